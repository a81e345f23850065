package kv

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	HashTableStatsName = "xstl/hashtable"
)

type hashTableStats struct {
	elements      metric.Int64UpDownCounter
	rehashes      metric.Int64Counter
	relinked      metric.Int64Counter
	allocFailures metric.Int64Counter
}

func (stats *hashTableStats) RecordElements(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.elements.Add(context.Background(), delta)
}

func (stats *hashTableStats) RecordRehash(relinked int64) {
	if stats == nil {
		return
	}
	stats.rehashes.Add(context.Background(), 1)
	stats.relinked.Add(context.Background(), relinked)
}

func (stats *hashTableStats) IncreaseAllocFailures() {
	if stats == nil {
		return
	}
	stats.allocFailures.Add(context.Background(), 1)
}

func newHashTableStats(name string) *hashTableStats {
	meterName := fmt.Sprintf("%s/%s", HashTableStatsName, name)
	return &hashTableStats{
		elements: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"hashtable.elements",
				metric.WithDescription("The number of elements in the hash table."),
			),
		),
		rehashes: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"hashtable.rehashes",
				metric.WithDescription("The number of bucket vector rebuilds."),
			),
		),
		relinked: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"hashtable.rehash.relinked",
				metric.WithDescription("The number of nodes relinked by rehash."),
			),
		),
		allocFailures: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"hashtable.alloc.failures",
				metric.WithDescription("The number of failed node or bucket allocations."),
			),
		),
	}
}
