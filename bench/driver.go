package bench

import (
	"go.uber.org/zap"

	"github.com/benz9527/xstl/lib/kv"
	"github.com/benz9527/xstl/lib/tree"
)

// container is the common surface of the eight façades the cases drive.
// The keys are ints, the mapped value of a key k is valueOf(k).
type container interface {
	insert(k int) (bool, error)
	find(k int) bool
	count(k int) int
	eraseKey(k int) int
	len() int64
	keys() []int
	clone() (container, error)
	clear()
}

type driver struct {
	ordered bool
	multi   bool
	create  func(o *driverOptions) container
}

type driverOptions struct {
	cfg       CaseConfig
	logger    *zap.Logger
	statsName string
}

func valueOf(k int) int {
	return k ^ 0x5bd1e995
}

func (o *driverOptions) treeOptions() []tree.RBTreeOption {
	opts := make([]tree.RBTreeOption, 0, 4)
	switch o.cfg.Allocator {
	case HeapAllocator:
		opts = append(opts, tree.WithRBTreeHeapAllocator())
	default:
		opts = append(opts, tree.WithRBTreeArena(o.cfg.ArenaChunk))
	}
	if o.cfg.NodeLimit > 0 {
		opts = append(opts, tree.WithRBTreeNodeLimit(o.cfg.NodeLimit))
	}
	if o.logger != nil {
		opts = append(opts, tree.WithRBTreeLogger(o.logger))
	}
	if o.statsName != "" {
		opts = append(opts, tree.WithRBTreeStats(o.statsName))
	}
	return opts
}

func (o *driverOptions) tableOptions() []kv.HashTableOption {
	opts := make([]kv.HashTableOption, 0, 5)
	switch o.cfg.Allocator {
	case HeapAllocator:
		opts = append(opts, kv.WithHashTableHeapAllocator())
	default:
		opts = append(opts, kv.WithHashTableArena(o.cfg.ArenaChunk))
	}
	if o.cfg.Buckets > 0 {
		opts = append(opts, kv.WithHashTableBuckets(o.cfg.Buckets))
	}
	if o.cfg.NodeLimit > 0 {
		opts = append(opts, kv.WithHashTableNodeLimit(o.cfg.NodeLimit))
	}
	if o.logger != nil {
		opts = append(opts, kv.WithHashTableLogger(o.logger))
	}
	if o.statsName != "" {
		opts = append(opts, kv.WithHashTableStats(o.statsName))
	}
	return opts
}

var drivers = map[ContainerKind]driver{
	MapKind: {ordered: true, create: func(o *driverOptions) container {
		return &mapDriver{m: tree.NewMap[int, int](o.treeOptions()...), hint: o.cfg.UseHint}
	}},
	MultiMapKind: {ordered: true, multi: true, create: func(o *driverOptions) container {
		return &multiMapDriver{m: tree.NewMultiMap[int, int](o.treeOptions()...), hint: o.cfg.UseHint}
	}},
	SetKind: {ordered: true, create: func(o *driverOptions) container {
		return &setDriver{s: tree.NewSet[int](o.treeOptions()...), hint: o.cfg.UseHint}
	}},
	MultiSetKind: {ordered: true, multi: true, create: func(o *driverOptions) container {
		return &multiSetDriver{s: tree.NewMultiSet[int](o.treeOptions()...), hint: o.cfg.UseHint}
	}},
	HashMapKind: {create: func(o *driverOptions) container {
		return &hashMapDriver{m: kv.NewHashMap[int, int](o.tableOptions()...)}
	}},
	HashMultiMapKind: {multi: true, create: func(o *driverOptions) container {
		return &hashMultiMapDriver{m: kv.NewHashMultiMap[int, int](o.tableOptions()...)}
	}},
	HashSetKind: {create: func(o *driverOptions) container {
		return &hashSetDriver{s: kv.NewHashSet[int](o.tableOptions()...)}
	}},
	HashMultiSetKind: {multi: true, create: func(o *driverOptions) container {
		return &hashMultiSetDriver{s: kv.NewHashMultiSet[int](o.tableOptions()...)}
	}},
}

type mapDriver struct {
	m    *tree.Map[int, int]
	hint bool
}

func (d *mapDriver) insert(k int) (bool, error) {
	if d.hint {
		_, ok, err := d.m.InsertHint(d.m.UpperBound(k), k, valueOf(k))
		return ok, err
	}
	_, ok, err := d.m.Insert(k, valueOf(k))
	return ok, err
}

func (d *mapDriver) find(k int) bool {
	v, ok := d.m.Get(k)
	return ok && v == valueOf(k)
}

func (d *mapDriver) count(k int) int    { return d.m.Count(k) }
func (d *mapDriver) eraseKey(k int) int { return d.m.EraseKey(k) }
func (d *mapDriver) len() int64         { return d.m.Len() }
func (d *mapDriver) keys() []int        { return d.m.Keys() }
func (d *mapDriver) clear()             { d.m.Clear() }

func (d *mapDriver) clone() (container, error) {
	m, err := d.m.Clone()
	if err != nil {
		return nil, err
	}
	return &mapDriver{m: m, hint: d.hint}, nil
}

type multiMapDriver struct {
	m    *tree.MultiMap[int, int]
	hint bool
}

func (d *multiMapDriver) insert(k int) (bool, error) {
	var err error
	if d.hint {
		_, err = d.m.InsertHint(d.m.UpperBound(k), k, valueOf(k))
	} else {
		_, err = d.m.Insert(k, valueOf(k))
	}
	return err == nil, err
}

func (d *multiMapDriver) find(k int) bool {
	it := d.m.Find(k)
	return it.Valid() && it.Val() == valueOf(k)
}

func (d *multiMapDriver) count(k int) int    { return d.m.Count(k) }
func (d *multiMapDriver) eraseKey(k int) int { return d.m.EraseKey(k) }
func (d *multiMapDriver) len() int64         { return d.m.Len() }
func (d *multiMapDriver) keys() []int        { return d.m.Keys() }
func (d *multiMapDriver) clear()             { d.m.Clear() }

func (d *multiMapDriver) clone() (container, error) {
	m, err := d.m.Clone()
	if err != nil {
		return nil, err
	}
	return &multiMapDriver{m: m, hint: d.hint}, nil
}

type setDriver struct {
	s    *tree.Set[int]
	hint bool
}

func (d *setDriver) insert(k int) (bool, error) {
	if d.hint {
		_, ok, err := d.s.InsertHint(d.s.UpperBound(k), k)
		return ok, err
	}
	_, ok, err := d.s.Insert(k)
	return ok, err
}

func (d *setDriver) find(k int) bool    { return d.s.Contains(k) }
func (d *setDriver) count(k int) int    { return d.s.Count(k) }
func (d *setDriver) eraseKey(k int) int { return d.s.EraseKey(k) }
func (d *setDriver) len() int64         { return d.s.Len() }
func (d *setDriver) keys() []int        { return d.s.Keys() }
func (d *setDriver) clear()             { d.s.Clear() }

func (d *setDriver) clone() (container, error) {
	s, err := d.s.Clone()
	if err != nil {
		return nil, err
	}
	return &setDriver{s: s, hint: d.hint}, nil
}

type multiSetDriver struct {
	s    *tree.MultiSet[int]
	hint bool
}

func (d *multiSetDriver) insert(k int) (bool, error) {
	var err error
	if d.hint {
		_, err = d.s.InsertHint(d.s.UpperBound(k), k)
	} else {
		_, err = d.s.Insert(k)
	}
	return err == nil, err
}

func (d *multiSetDriver) find(k int) bool    { return d.s.Find(k).Valid() }
func (d *multiSetDriver) count(k int) int    { return d.s.Count(k) }
func (d *multiSetDriver) eraseKey(k int) int { return d.s.EraseKey(k) }
func (d *multiSetDriver) len() int64         { return d.s.Len() }
func (d *multiSetDriver) keys() []int        { return d.s.Keys() }
func (d *multiSetDriver) clear()             { d.s.Clear() }

func (d *multiSetDriver) clone() (container, error) {
	s, err := d.s.Clone()
	if err != nil {
		return nil, err
	}
	return &multiSetDriver{s: s, hint: d.hint}, nil
}

type hashMapDriver struct {
	m *kv.HashMap[int, int]
}

func (d *hashMapDriver) insert(k int) (bool, error) {
	_, ok, err := d.m.Insert(k, valueOf(k))
	return ok, err
}

func (d *hashMapDriver) find(k int) bool {
	v, ok := d.m.Get(k)
	return ok && v == valueOf(k)
}

func (d *hashMapDriver) count(k int) int    { return d.m.Count(k) }
func (d *hashMapDriver) eraseKey(k int) int { return d.m.EraseKey(k) }
func (d *hashMapDriver) len() int64         { return d.m.Len() }
func (d *hashMapDriver) keys() []int        { return d.m.Keys() }
func (d *hashMapDriver) clear()             { d.m.Clear() }

func (d *hashMapDriver) clone() (container, error) {
	m, err := d.m.Clone()
	if err != nil {
		return nil, err
	}
	return &hashMapDriver{m: m}, nil
}

type hashMultiMapDriver struct {
	m *kv.HashMultiMap[int, int]
}

func (d *hashMultiMapDriver) insert(k int) (bool, error) {
	_, err := d.m.Insert(k, valueOf(k))
	return err == nil, err
}

func (d *hashMultiMapDriver) find(k int) bool {
	it := d.m.Find(k)
	return it.Valid() && it.Val() == valueOf(k)
}

func (d *hashMultiMapDriver) count(k int) int    { return d.m.Count(k) }
func (d *hashMultiMapDriver) eraseKey(k int) int { return d.m.EraseKey(k) }
func (d *hashMultiMapDriver) len() int64         { return d.m.Len() }
func (d *hashMultiMapDriver) keys() []int        { return d.m.Keys() }
func (d *hashMultiMapDriver) clear()             { d.m.Clear() }

func (d *hashMultiMapDriver) clone() (container, error) {
	m, err := d.m.Clone()
	if err != nil {
		return nil, err
	}
	return &hashMultiMapDriver{m: m}, nil
}

type hashSetDriver struct {
	s *kv.HashSet[int]
}

func (d *hashSetDriver) insert(k int) (bool, error) {
	_, ok, err := d.s.Insert(k)
	return ok, err
}

func (d *hashSetDriver) find(k int) bool    { return d.s.Contains(k) }
func (d *hashSetDriver) count(k int) int    { return d.s.Count(k) }
func (d *hashSetDriver) eraseKey(k int) int { return d.s.EraseKey(k) }
func (d *hashSetDriver) len() int64         { return d.s.Len() }
func (d *hashSetDriver) keys() []int        { return d.s.Keys() }
func (d *hashSetDriver) clear()             { d.s.Clear() }

func (d *hashSetDriver) clone() (container, error) {
	s, err := d.s.Clone()
	if err != nil {
		return nil, err
	}
	return &hashSetDriver{s: s}, nil
}

type hashMultiSetDriver struct {
	s *kv.HashMultiSet[int]
}

func (d *hashMultiSetDriver) insert(k int) (bool, error) {
	_, err := d.s.Insert(k)
	return err == nil, err
}

func (d *hashMultiSetDriver) find(k int) bool    { return d.s.Find(k).Valid() }
func (d *hashMultiSetDriver) count(k int) int    { return d.s.Count(k) }
func (d *hashMultiSetDriver) eraseKey(k int) int { return d.s.EraseKey(k) }
func (d *hashMultiSetDriver) len() int64         { return d.s.Len() }
func (d *hashMultiSetDriver) keys() []int        { return d.s.Keys() }
func (d *hashMultiSetDriver) clear()             { d.s.Clear() }

func (d *hashMultiSetDriver) clone() (container, error) {
	s, err := d.s.Clone()
	if err != nil {
		return nil, err
	}
	return &hashMultiSetDriver{s: s}, nil
}
