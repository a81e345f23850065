package tree

import (
	"fmt"

	"github.com/benz9527/xstl/lib/infra"
)

func blackDepthTo[V any](target, to *rbNode[V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.parent {
		if aux.isBlack() {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RedViolationValidate is an inorder traversal to validate that the root
// is black and no red node has a red child.
func RedViolationValidate[K any, V any](tree *RBTree[K, V]) error {
	size := tree.Len()
	aux := tree.root()
	if size <= 0 || aux == nil {
		return nil
	}
	if aux.isRed() {
		return infra.WrapErrorStackWithMessage(errRedViolation, "red root")
	}

	stack := make([]*rbNode[V], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for l := len(stack); l > 0; l = len(stack) {
		if aux = stack[l-1]; aux.isRed() {
			if aux.left.isRed() || aux.right.isRed() {
				return infra.WrapErrorStack(errRedViolation)
			}
		}

		stack = stack[:l-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes with at least one nil child.
func bfsLeaves[K any, V any](tree *RBTree[K, V]) []*rbNode[V] {
	size := tree.Len()
	aux := tree.root()
	if size <= 0 || aux == nil {
		return nil
	}

	leaves := make([]*rbNode[V], 0, size>>1+1)
	queue := make([]*rbNode[V], 0, size>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.left, aux.right
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K any, V any](tree *RBTree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	header := tree.header
	blackDepth := blackDepthTo[V](leaves[0], header)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[V](leaves[i], header); depth != blackDepth {
			return infra.WrapErrorStackWithMessage(errBlackViolation,
				fmt.Sprintf("black depth %d and %d", blackDepth, depth))
		}
	}
	return nil
}

// OrderViolationValidate checks the inorder sequence is non-decreasing,
// the parent links are consistent and the count matches.
func OrderViolationValidate[K any, V any](tree *RBTree[K, V]) error {
	var (
		n    int64
		prev *rbNode[V]
	)
	for aux := tree.header.left; aux != tree.header; aux = aux.succ() {
		if aux.left != nil && aux.left.parent != aux ||
			aux.right != nil && aux.right.parent != aux {
			return infra.WrapErrorStackWithMessage(errOrderViolation, "broken parent link")
		}
		if prev != nil && tree.less(tree.key(aux), tree.key(prev)) {
			return infra.WrapErrorStackWithMessage(errOrderViolation,
				fmt.Sprintf("index %d is less than its predecessor", n))
		}
		prev = aux
		n++
		if n > tree.count {
			break
		}
	}
	if n != tree.count {
		return infra.WrapErrorStackWithMessage(errOrderViolation,
			fmt.Sprintf("traversed %d nodes, but count is %d", n, tree.count))
	}
	return nil
}

// ExtremalViolationValidate checks the header links to the root and the
// extremal nodes.
func ExtremalViolationValidate[K any, V any](tree *RBTree[K, V]) error {
	header, root := tree.header, tree.root()
	if header.color != Red {
		return infra.WrapErrorStackWithMessage(errExtremeViolation, "black header")
	}
	if root == nil {
		if header.left != header || header.right != header || tree.count != 0 {
			return infra.WrapErrorStackWithMessage(errExtremeViolation, "empty tree links")
		}
		return nil
	}
	if root.parent != header {
		return infra.WrapErrorStackWithMessage(errExtremeViolation, "root parent is not header")
	}
	if header.left != root.minimum() {
		return infra.WrapErrorStackWithMessage(errExtremeViolation, "leftmost")
	}
	if header.right != root.maximum() {
		return infra.WrapErrorStackWithMessage(errExtremeViolation, "rightmost")
	}
	return nil
}
