package kv

import "go.uber.org/zap"

type hashTableOptions struct {
	logger         *zap.Logger
	statsName      string
	buckets        uint64
	arenaChunkSize int
	nodeLimit      int64
	bucketLimit    int
	useHeap        bool
}

type HashTableOption func(opts *hashTableOptions)

// WithHashTableBuckets is the bucket count hint, rounded up to a prime.
func WithHashTableBuckets(hint uint64) HashTableOption {
	return func(opts *hashTableOptions) {
		opts.buckets = hint
	}
}

func WithHashTableArena(chunkSize int) HashTableOption {
	return func(opts *hashTableOptions) {
		opts.useHeap = false
		opts.arenaChunkSize = chunkSize
	}
}

func WithHashTableHeapAllocator() HashTableOption {
	return func(opts *hashTableOptions) {
		opts.useHeap = true
	}
}

// WithHashTableNodeLimit caps the live nodes.
func WithHashTableNodeLimit(limit int64) HashTableOption {
	return func(opts *hashTableOptions) {
		opts.nodeLimit = limit
	}
}

// WithHashTableBucketLimit caps the length of a bucket vector, the
// reserve beyond it fails.
func WithHashTableBucketLimit(limit int) HashTableOption {
	return func(opts *hashTableOptions) {
		opts.bucketLimit = limit
	}
}

func WithHashTableLogger(logger *zap.Logger) HashTableOption {
	return func(opts *hashTableOptions) {
		opts.logger = logger
	}
}

func WithHashTableStats(name string) HashTableOption {
	return func(opts *hashTableOptions) {
		opts.statsName = name
	}
}
