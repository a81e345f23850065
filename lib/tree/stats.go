package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xstl/rbtree"
)

// rbTreeStats is nil-safe, the disabled stats cost a nil check only.
type rbTreeStats struct {
	elements      metric.Int64UpDownCounter
	rotations     metric.Int64Counter
	allocFailures metric.Int64Counter
}

func (stats *rbTreeStats) RecordElements(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.elements.Add(context.Background(), delta)
}

func (stats *rbTreeStats) IncreaseRotations() {
	if stats == nil {
		return
	}
	stats.rotations.Add(context.Background(), 1)
}

func (stats *rbTreeStats) IncreaseAllocFailures() {
	if stats == nil {
		return
	}
	stats.allocFailures.Add(context.Background(), 1)
}

func newRBTreeStats(name string) *rbTreeStats {
	meterName := fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	return &rbTreeStats{
		elements: lo.Must[metric.Int64UpDownCounter](otel.Meter(meterName).
			Int64UpDownCounter(
				"rbtree.elements",
				metric.WithDescription("The number of elements in the rbtree."),
			),
		),
		rotations: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"rbtree.rotations",
				metric.WithDescription("The number of rotations by insert and erase rebalancing."),
			),
		),
		allocFailures: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"rbtree.alloc.failures",
				metric.WithDescription("The number of failed node allocations."),
			),
		),
	}
}
