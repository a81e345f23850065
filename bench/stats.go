package bench

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	BenchStatsName = "xstl/bench"
)

type benchStats struct {
	caseDuration metric.Float64Histogram
	caseFailures metric.Int64Counter
	allocFails   metric.Int64Counter
}

func (stats *benchStats) RecordResult(res *Result) {
	if stats == nil || res == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("container", string(res.Container)))
	stats.caseDuration.Record(context.Background(), float64(res.Total.Microseconds())/1000.0, attrs)
	if res.Err != nil {
		stats.caseFailures.Add(context.Background(), 1, attrs)
	}
	if res.AllocFailures > 0 {
		stats.allocFails.Add(context.Background(), int64(res.AllocFailures), attrs)
	}
}

func newBenchStats(name string) *benchStats {
	meterName := fmt.Sprintf("%s/%s", BenchStatsName, name)
	return &benchStats{
		caseDuration: lo.Must[metric.Float64Histogram](otel.Meter(meterName).
			Float64Histogram(
				"bench.case.duration",
				metric.WithDescription("The wall time of a bench case."),
				metric.WithUnit("ms"),
			),
		),
		caseFailures: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"bench.case.failures",
				metric.WithDescription("The number of failed bench cases."),
			),
		),
		allocFails: lo.Must[metric.Int64Counter](otel.Meter(meterName).
			Int64Counter(
				"bench.case.alloc.failures",
				metric.WithDescription("The number of rejected inserts by the node limits."),
			),
		),
	}
}
