package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xstl/lib/alloc"
	"github.com/benz9527/xstl/lib/infra"
)

var _ RBNode[int] = (*rbNode[int])(nil)

type rbNode[V any] struct {
	parent *rbNode[V]
	left   *rbNode[V]
	right  *rbNode[V]
	val    V
	color  RBColor
}

func (node *rbNode[V]) Color() RBColor {
	return node.color
}

func (node *rbNode[V]) Val() V {
	return node.val
}

func (node *rbNode[V]) Left() RBNode[V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[V]) Right() RBNode[V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// Parent hides the sentinel header. Only the root and the header
// are the parent of each other.
func (node *rbNode[V]) Parent() RBNode[V] {
	if node == nil || node.parent == nil || node.parent.parent == node {
		return nil
	}
	return node.parent
}

func (node *rbNode[V]) isRed() bool {
	return node != nil && node.color == Red
}

// All NIL nodes are considered black.
func (node *rbNode[V]) isBlack() bool {
	return !node.isRed()
}

func (node *rbNode[V]) child(dir RBDirection) *rbNode[V] {
	if dir == Left {
		return node.left
	}
	return node.right
}

func (node *rbNode[V]) minimum() *rbNode[V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *rbNode[V]) maximum() *rbNode[V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
// The succ of the rightmost node is the header.
func (node *rbNode[V]) succ() *rbNode[V] {
	x := node
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for x == aux.right {
		x = aux
		aux = aux.parent
	}
	// The root is the only node and it is the rightmost one, x has
	// been moved to the header already.
	if x.right != aux {
		x = aux
	}
	return x
}

// The pred node of the current node is its previous node in sorted order.
// The caller promises that node is not the leftmost one.
func (node *rbNode[V]) pred() *rbNode[V] {
	x := node
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// RBTree is the red-black tree engine of the ordered containers.
// The values are located by the key projected from value. The engine
// accepts both the unique and the equal (duplicate keys) insertion, the
// façades restrict them.
//
// The header is a sentinel node without value:
//
//	header.parent => root, root.parent => header
//	header.left   => leftmost (minimum) node
//	header.right  => rightmost (maximum) node
//
// The header is painted red, so it is distinguishable from the root.
// An empty tree is header.left == header.right == header.
//
// The tree is not thread safe.
type RBTree[K any, V any] struct {
	header *rbNode[V]
	keyOf  func(V) K
	less   func(i, j K) bool
	nodes  alloc.Allocator[rbNode[V]]
	logger *zap.Logger
	stats  *rbTreeStats
	opts   *rbTreeOptions
	count  int64
}

func (tree *RBTree[K, V]) key(node *rbNode[V]) K {
	return tree.keyOf(node.val)
}

func (tree *RBTree[K, V]) root() *rbNode[V] {
	return tree.header.parent
}

func (tree *RBTree[K, V]) isRoot(node *rbNode[V]) bool {
	return node == tree.header.parent
}

func (tree *RBTree[K, V]) direction(node *rbNode[V]) RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil node without direction")
	}

	if tree.isRoot(node) {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

// replaceChild links the new node into the old node's position of its parent.
func (tree *RBTree[K, V]) replaceChild(old, new *rbNode[V]) {
	switch dir := tree.direction(old); dir {
	case Root:
		tree.header.parent = new
	case Left:
		old.parent.left = new
	case Right:
		old.parent.right = new
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to replace")
	}
}

func (tree *RBTree[K, V]) iterator(node *rbNode[V]) Iterator[V] {
	return Iterator[V]{node: node, header: tree.header}
}

func (tree *RBTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *RBTree[K, V]) Empty() bool {
	return tree.count == 0
}

// Root returns nil if the tree is empty.
func (tree *RBTree[K, V]) Root() RBNode[V] {
	if tree.header.parent == nil {
		return nil
	}
	return tree.header.parent
}

// Begin returns the iterator of the leftmost node, it is End() if the tree is empty.
func (tree *RBTree[K, V]) Begin() Iterator[V] {
	return tree.iterator(tree.header.left)
}

// End is the one past the rightmost position.
func (tree *RBTree[K, V]) End() Iterator[V] {
	return tree.iterator(tree.header)
}

func (tree *RBTree[K, V]) Min() (V, error) {
	if tree.count <= 0 {
		return *new(V), ErrEmptyTree
	}
	return tree.header.left.val, nil
}

func (tree *RBTree[K, V]) Max() (V, error) {
	if tree.count <= 0 {
		return *new(V), ErrEmptyTree
	}
	return tree.header.right.val, nil
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *RBTree[K, V]) leftRotate(x *rbNode[V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is nil")
	}

	y := x.right
	dir := tree.direction(x)
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent

	switch dir {
	case Root:
		tree.header.parent = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.left = x
	x.parent = y
	tree.stats.IncreaseRotations()
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *RBTree[K, V]) rightRotate(x *rbNode[V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is nil")
	}

	y := x.left
	dir := tree.direction(x)
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent

	switch dir {
	case Root:
		tree.header.parent = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.right = x
	x.parent = y
	tree.stats.IncreaseRotations()
}

// rotate moves x down to the dir side.
func (tree *RBTree[K, V]) rotate(x *rbNode[V], dir RBDirection) {
	switch dir {
	case Left:
		tree.leftRotate(x)
	case Right:
		tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unable to rotate to root direction")
	}
}

// insertNode allocates the node before touching the links, so an
// allocation failure leaves the tree as it was.
func (tree *RBTree[K, V]) insertNode(parent *rbNode[V], insertLeft bool, val V) (Iterator[V], error) {
	z, err := tree.nodes.Allocate()
	if err != nil {
		tree.stats.IncreaseAllocFailures()
		tree.logger.Warn("[rbtree] node allocation failed",
			zap.Int64("len", tree.count),
			zap.Error(err),
		)
		return tree.End(), infra.WrapErrorStackWithMessage(err, "[rbtree] unable to insert")
	}
	z.val = val
	z.color = Red
	z.parent = parent
	z.left, z.right = nil, nil

	header := tree.header
	if /* i1 */ parent == header {
		header.parent = z
		header.left = z
		header.right = z
	} else if insertLeft {
		parent.left = z
		if parent == header.left {
			header.left = z
		}
	} else {
		parent.right = z
		if parent == header.right {
			header.right = z
		}
	}

	tree.insertRebalance(z)
	tree.count++
	tree.stats.RecordElements(1)
	return tree.iterator(z), nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

i1: Empty rbtree, insert directly, but root node is painted to black.

im1: Current node X's parent P is black, hold p3 and p4.

im2: Current node X is the root, repaint it into black.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation may be still red-violation. Here must enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Handle im4 scenario, current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *RBTree[K, V]) insertRebalance(x *rbNode[V]) {
	for /* im1 & im2 */ !tree.isRoot(x) && x.parent.isRed() {
		// A red parent is never the root, so the grandpa exists.
		p := x.parent
		gp := p.parent
		pdir := tree.direction(p)
		uncle := gp.child(-pdir)

		if /* im3 */ uncle.isRed() {
			p.color = Black
			uncle.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if /* im4 */ tree.direction(x) != pdir {
			x = p
			tree.rotate(x, pdir)
			p = x.parent
		}

		/* im5 */
		p.color = Black
		gp.color = Red
		tree.rotate(gp, -pdir)
	}
	tree.root().color = Black
}

/*
r1: Current node Z has at most one child X, X replaces Z directly.

r2: Current node Z has left and right node.
Find Z's succ Y (the minimum of the right subtree) and relink Y into
Z's position, Y takes Z's color. Unlike swapping the values only, the
nodes keep their identities, so the iterators of Y are still valid.
Then Z is removed from Y's old position.

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   relink(Z, Y) L  ..
		|   ===========>     |
		P                    P
	   / \                  / \
	  Y  ..                X  ..
	   \
	    X

r3: The removed position was red, nothing to fix.

r4: The removed position was black, X is red. Repaint X into black.

r5: The removed position was black, X is black (or NIL).
(black-violation) Enter removeRebalance.
*/
func (tree *RBTree[K, V]) removeNode(z *rbNode[V]) *rbNode[V] {
	header := tree.header
	y := z
	var x, xParent *rbNode[V]
	if /* r1 */ y.left == nil {
		x = y.right
	} else if /* r1 */ y.right == nil {
		x = y.left
	} else /* r2 */ {
		y = y.right.minimum()
		x = y.right
	}

	if /* r2 */ y != z {
		z.left.parent = y
		y.left = z.left
		if y != z.right {
			xParent = y.parent
			if x != nil {
				x.parent = y.parent
			}
			y.parent.left = x
			y.right = z.right
			z.right.parent = y
		} else {
			xParent = y
		}
		tree.replaceChild(z, y)
		y.parent = z.parent
		y.color, z.color = z.color, y.color
		y = z // y is the node to be physically removed.
	} else /* r1 */ {
		xParent = y.parent
		if x != nil {
			x.parent = y.parent
		}
		tree.replaceChild(z, x)
		if header.left == z {
			if z.right == nil {
				header.left = z.parent // the header if z is the root
			} else {
				header.left = x.minimum()
			}
		}
		if header.right == z {
			if z.left == nil {
				header.right = z.parent
			} else {
				header.right = x.maximum()
			}
		}
	}

	if /* r3 */ y.isRed() {
		return y
	}
	if /* r4 */ x.isRed() {
		x.color = Black
		return y
	}
	/* r5 */
	tree.removeRebalance(x, xParent)
	return y
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X is the node (may be NIL) with one black lost, P is X's parent.
Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) X is left node of P, left rotate P
(2) X is right node of P, right rotate P.
(3) repaint S into black, P into red. Enter rm2-rm5 with new sibling.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
is black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Unable to satisfy p3 and p4. We have to paint the S into red to satisfy
p4 locally. Then recursive to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) Swap P and S's color.
(4) Repaint Sd into black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *RBTree[K, V]) removeRebalance(x, xParent *rbNode[V]) {
	for !tree.isRoot(x) && x.isBlack() {
		// x may be NIL, its direction comes from the parent.
		dir := Left
		if x != xParent.left {
			dir = Right
		}

		sibling := xParent.child(-dir)
		if /* rm1 */ sibling.isRed() {
			sibling.color = Black
			xParent.color = Red
			tree.rotate(xParent, dir)
			sibling = xParent.child(-dir)
		}

		sc, sd := sibling.child(dir), sibling.child(-dir)
		if /* rm2 & rm3 */ sc.isBlack() && sd.isBlack() {
			sibling.color = Red
			x = xParent // rm2 exits the loop with a red x
			xParent = xParent.parent
			continue
		}

		if /* rm4 */ sd.isBlack() {
			sc.color = Black
			sibling.color = Red
			tree.rotate(sibling, -dir)
			sibling = xParent.child(-dir)
			sd = sibling.child(-dir)
		}

		/* rm5 */
		sibling.color = xParent.color
		xParent.color = Black
		sd.color = Black
		tree.rotate(xParent, dir)
		x = tree.root()
		break
	}
	if x != nil {
		x.color = Black
	}
}

// InsertEqual inserts the value even if its key exists already.
// The new value is placed after the existing equal keys, so the
// equal range keeps the insertion order.
func (tree *RBTree[K, V]) InsertEqual(val V) (Iterator[V], error) {
	k := tree.keyOf(val)
	y, x := tree.header, tree.root()
	for x != nil {
		y = x
		if tree.less(k, tree.key(x)) {
			x = x.left
		} else {
			x = x.right
		}
	}
	return tree.insertNode(y, y == tree.header || tree.less(k, tree.key(y)), val)
}

// InsertUnique returns the iterator of the existing value and false if
// the key exists already.
func (tree *RBTree[K, V]) InsertUnique(val V) (Iterator[V], bool, error) {
	k := tree.keyOf(val)
	y, x := tree.header, tree.root()
	goLeft := true
	for x != nil {
		y = x
		goLeft = tree.less(k, tree.key(x))
		if goLeft {
			x = x.left
		} else {
			x = x.right
		}
	}

	// The in-order neighbor j of the bottom position is the only
	// candidate with an equal key.
	j := y
	if goLeft {
		if j == tree.header.left {
			it, err := tree.insertNode(y, true, val)
			return it, err == nil, err
		}
		j = j.pred()
	}
	if tree.less(tree.key(j), k) {
		it, err := tree.insertNode(y, y == tree.header || tree.less(k, tree.key(y)), val)
		return it, err == nil, err
	}
	return tree.iterator(j), false, nil
}

// insertBefore links the value right before pos (pos is not the header).
// Either pos has no left child or its pred has no right child.
func (tree *RBTree[K, V]) insertBefore(pos *rbNode[V], val V) (Iterator[V], error) {
	if pos.left == nil {
		return tree.insertNode(pos, true, val)
	}
	return tree.insertNode(pos.pred(), false, val)
}

// InsertEqualHint takes O(1) if the hint pos is the position that the
// value should be placed before, i.e. the upper bound of the value's key.
// Otherwise, it falls back to the InsertEqual.
func (tree *RBTree[K, V]) InsertEqualHint(pos Iterator[V], val V) (Iterator[V], error) {
	if pos.header != tree.header {
		return tree.End(), infra.WrapErrorStack(ErrForeignIterator)
	}

	k := tree.keyOf(val)
	header := tree.header
	if pos.node == header {
		if tree.count == 0 {
			return tree.insertNode(header, true, val)
		}
		if !tree.less(k, tree.key(header.right)) {
			return tree.insertNode(header.right, false, val)
		}
		return tree.InsertEqual(val)
	}

	if tree.less(k, tree.key(pos.node)) {
		if pos.node == header.left {
			return tree.insertNode(pos.node, true, val)
		}
		if before := pos.node.pred(); !tree.less(k, tree.key(before)) {
			return tree.insertBefore(pos.node, val)
		}
	}
	return tree.InsertEqual(val)
}

// InsertUniqueHint takes O(1) if the hint pos is the position that the
// value should be placed before or the pos contains the equal key.
// Otherwise, it falls back to the InsertUnique.
func (tree *RBTree[K, V]) InsertUniqueHint(pos Iterator[V], val V) (Iterator[V], bool, error) {
	if pos.header != tree.header {
		return tree.End(), false, infra.WrapErrorStack(ErrForeignIterator)
	}

	k := tree.keyOf(val)
	header := tree.header
	if pos.node == header {
		if tree.count == 0 {
			it, err := tree.insertNode(header, true, val)
			return it, err == nil, err
		}
		if tree.less(tree.key(header.right), k) {
			it, err := tree.insertNode(header.right, false, val)
			return it, err == nil, err
		}
		return tree.InsertUnique(val)
	}

	pk := tree.key(pos.node)
	if tree.less(k, pk) {
		if pos.node == header.left {
			it, err := tree.insertNode(pos.node, true, val)
			return it, err == nil, err
		}
		if before := pos.node.pred(); tree.less(tree.key(before), k) {
			it, err := tree.insertBefore(pos.node, val)
			return it, err == nil, err
		}
	} else if !tree.less(pk, k) {
		return pos, false, nil
	}
	return tree.InsertUnique(val)
}

// LowerBound returns the first position whose key is not less than k.
func (tree *RBTree[K, V]) LowerBound(k K) Iterator[V] {
	y, x := tree.header, tree.root()
	for x != nil {
		if !tree.less(tree.key(x), k) {
			y, x = x, x.left
		} else {
			x = x.right
		}
	}
	return tree.iterator(y)
}

// UpperBound returns the first position whose key is greater than k.
func (tree *RBTree[K, V]) UpperBound(k K) Iterator[V] {
	y, x := tree.header, tree.root()
	for x != nil {
		if tree.less(k, tree.key(x)) {
			y, x = x, x.left
		} else {
			x = x.right
		}
	}
	return tree.iterator(y)
}

func (tree *RBTree[K, V]) EqualRange(k K) (first, last Iterator[V]) {
	return tree.LowerBound(k), tree.UpperBound(k)
}

// Find returns End() if the key is absent. For the duplicate keys, it
// returns the first one.
func (tree *RBTree[K, V]) Find(k K) Iterator[V] {
	it := tree.LowerBound(k)
	if it.node == tree.header || tree.less(k, tree.key(it.node)) {
		return tree.End()
	}
	return it
}

func (tree *RBTree[K, V]) Contains(k K) bool {
	return tree.Find(k).node != tree.header
}

func (tree *RBTree[K, V]) Count(k K) int {
	n := 0
	for it, last := tree.EqualRange(k); it.node != last.node; it = it.Next() {
		n++
	}
	return n
}

// Erase removes the node of pos and returns its next position.
// Only the iterators of the erased node are invalidated.
func (tree *RBTree[K, V]) Erase(pos Iterator[V]) (Iterator[V], error) {
	if pos.header != tree.header {
		return tree.End(), infra.WrapErrorStack(ErrForeignIterator)
	}
	if pos.node == nil || pos.node == tree.header {
		return tree.End(), infra.WrapErrorStack(ErrEraseEnd)
	}

	next := pos.Next()
	y := tree.removeNode(pos.node)
	tree.nodes.Deallocate(y)
	tree.count--
	tree.stats.RecordElements(-1)
	return next, nil
}

// EraseRange removes [first, last) and returns the number of removed nodes.
func (tree *RBTree[K, V]) EraseRange(first, last Iterator[V]) (int, error) {
	if first.header != tree.header || last.header != tree.header {
		return 0, infra.WrapErrorStack(ErrForeignIterator)
	}
	if first.node == tree.header.left && last.node == tree.header {
		n := int(tree.count)
		tree.Clear()
		return n, nil
	}

	n := 0
	for first.node != last.node {
		var err error
		if first, err = tree.Erase(first); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// EraseKey removes all values with key k and returns the number of them.
func (tree *RBTree[K, V]) EraseKey(k K) int {
	first, last := tree.EqualRange(k)
	n, _ := tree.EraseRange(first, last)
	return n
}

// eraseSubtree frees without rebalancing.
func (tree *RBTree[K, V]) eraseSubtree(x *rbNode[V]) {
	for x != nil {
		tree.eraseSubtree(x.right)
		y := x.left
		tree.nodes.Deallocate(x)
		x = y
	}
}

func (tree *RBTree[K, V]) Clear() {
	if tree.count <= 0 {
		return
	}
	tree.eraseSubtree(tree.root())
	tree.stats.RecordElements(-tree.count)
	tree.reset()
}

func (tree *RBTree[K, V]) reset() {
	tree.header.parent = nil
	tree.header.left = tree.header
	tree.header.right = tree.header
	tree.count = 0
}

// Swap exchanges the contents. The iterators follow their nodes into
// the other tree.
func (tree *RBTree[K, V]) Swap(that *RBTree[K, V]) {
	if tree == that {
		return
	}
	*tree, *that = *that, *tree
}

func (tree *RBTree[K, V]) cloneNode(x *rbNode[V]) (*rbNode[V], error) {
	node, err := tree.nodes.Allocate()
	if err != nil {
		return nil, err
	}
	node.val = x.val
	node.color = x.color
	node.left, node.right, node.parent = nil, nil, nil
	return node, nil
}

// copySubtree copies x under the parent p. The right subtrees are copied
// recursively and the left spine iteratively. It frees the partial
// copy if allocation failed.
func (tree *RBTree[K, V]) copySubtree(x, p *rbNode[V]) (*rbNode[V], error) {
	top, err := tree.cloneNode(x)
	if err != nil {
		return nil, err
	}
	top.parent = p

	if x.right != nil {
		if top.right, err = tree.copySubtree(x.right, top); err != nil {
			tree.eraseSubtree(top)
			return nil, err
		}
	}

	p = top
	for x = x.left; x != nil; x = x.left {
		y, err := tree.cloneNode(x)
		if err != nil {
			tree.eraseSubtree(top)
			return nil, err
		}
		p.left = y
		y.parent = p
		if x.right != nil {
			if y.right, err = tree.copySubtree(x.right, y); err != nil {
				tree.eraseSubtree(top)
				return nil, err
			}
		}
		p = y
	}
	return top, nil
}

// Clone copies the structure and the colors into a new tree with its
// own allocator. The source tree is never modified.
func (tree *RBTree[K, V]) Clone() (*RBTree[K, V], error) {
	cp := newRBTree[K, V](tree.keyOf, tree.less, tree.opts)
	if tree.count <= 0 {
		return cp, nil
	}

	root, err := cp.copySubtree(tree.root(), cp.header)
	if err != nil {
		cp.stats.IncreaseAllocFailures()
		return nil, infra.WrapErrorStackWithMessage(err, "[rbtree] unable to clone")
	}
	cp.header.parent = root
	cp.header.left = root.minimum()
	cp.header.right = root.maximum()
	cp.count = tree.count
	cp.stats.RecordElements(cp.count)
	return cp, nil
}

// Foreach is the inorder traversal. Stop if action returns false.
func (tree *RBTree[K, V]) Foreach(action func(idx int64, color RBColor, val V) bool) {
	idx := int64(0)
	for aux := tree.header.left; aux != tree.header; aux = aux.succ() {
		if !action(idx, aux.color, aux.val) {
			return
		}
		idx++
	}
}

func newRBTree[K any, V any](keyOf func(V) K, less func(i, j K) bool, opts *rbTreeOptions) *RBTree[K, V] {
	header := &rbNode[V]{color: Red}
	header.left, header.right = header, header

	tree := &RBTree[K, V]{
		header: header,
		keyOf:  keyOf,
		less:   less,
		opts:   opts,
		logger: opts.logger,
	}
	if opts.useHeap {
		tree.nodes = alloc.NewHeapAllocator[rbNode[V]](opts.nodeLimit)
	} else {
		tree.nodes = alloc.NewArena[rbNode[V]](opts.arenaChunkSize, opts.nodeLimit)
	}
	if tree.logger == nil {
		tree.logger = zap.NewNop()
	}
	if opts.statsName != "" {
		tree.stats = newRBTreeStats(opts.statsName)
	}
	return tree
}

// NewRBTree creates the engine. The keyOf projects the key from the value,
// the less must be a strict weak ordering, otherwise the ordering and
// lookups are undefined.
func NewRBTree[K any, V any](keyOf func(V) K, less func(i, j K) bool, opts ...RBTreeOption) *RBTree[K, V] {
	o := &rbTreeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return newRBTree[K, V](keyOf, less, o)
}
