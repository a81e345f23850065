package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func TestParseMetricsExporterType(t *testing.T) {
	typ, err := ParseMetricsExporterType(" Console ")
	require.NoError(t, err)
	require.Equal(t, ConsoleExporter, typ)
	typ, err = ParseMetricsExporterType("")
	require.NoError(t, err)
	require.Equal(t, NoopExporter, typ)
	_, err = ParseMetricsExporterType("statsd")
	require.Error(t, err)
}

func TestNoopExporter(t *testing.T) {
	shutdown, err := InitMetricsExporter(NoopExporter)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestConsoleExporter(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := InitMetricsExporter(ConsoleExporter,
		WithConsoleWriter(buf),
		WithExportInterval(time.Hour, time.Second),
	)
	require.NoError(t, err)

	counter, err := otel.Meter("xstl/test").Int64Counter("test.counter", metric.WithDescription("test"))
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	ctx, cancel := context.WithCancel(context.Background())
	InitAppStats(ctx, "", nil)
	cancel()

	// Shutdown flushes the last collection.
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "test.counter")
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS()
	require.NoError(t, err)
	require.Positive(t, rss)
	require.Equal(t, "xstl/app/bench", appStatsName("bench"))
}
