package tree

import "go.uber.org/zap"

type rbTreeOptions struct {
	logger         *zap.Logger
	statsName      string
	arenaChunkSize int
	nodeLimit      int64
	useHeap        bool
}

type RBTreeOption func(opts *rbTreeOptions)

// WithRBTreeArena allocates the nodes from the slab chunks with
// the chunk size. It is the default strategy with 64 nodes per chunk.
func WithRBTreeArena(chunkSize int) RBTreeOption {
	return func(opts *rbTreeOptions) {
		opts.useHeap = false
		opts.arenaChunkSize = chunkSize
	}
}

// WithRBTreeHeapAllocator allocates every node from the Go heap.
func WithRBTreeHeapAllocator() RBTreeOption {
	return func(opts *rbTreeOptions) {
		opts.useHeap = true
	}
}

// WithRBTreeNodeLimit caps the live nodes, the insertion beyond the
// limit fails with alloc.ErrAllocFailed.
func WithRBTreeNodeLimit(limit int64) RBTreeOption {
	return func(opts *rbTreeOptions) {
		opts.nodeLimit = limit
	}
}

func WithRBTreeLogger(logger *zap.Logger) RBTreeOption {
	return func(opts *rbTreeOptions) {
		opts.logger = logger
	}
}

func WithRBTreeStats(name string) RBTreeOption {
	return func(opts *rbTreeOptions) {
		opts.statsName = name
	}
}
