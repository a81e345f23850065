package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xstl/lib/infra"
)

type MetricsExporterType string

const (
	ConsoleExporter    MetricsExporterType = "console"
	PrometheusExporter MetricsExporterType = "prometheus"
	NoopExporter       MetricsExporterType = "none"
)

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case "":
		return NoopExporter, nil
	case ConsoleExporter, PrometheusExporter, NoopExporter:
		return t, nil
	default:
	}
	return NoopExporter, infra.NewErrorStack("[observability] unknown metrics exporter " + typ)
}

type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Serves for test/dev environment.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration) (ShutdownFunc, error) {
	opts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
	if w != nil {
		opts = append(opts, stdoutmetric.WithWriter(w))
	}
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

type exporterOptions struct {
	writer   io.Writer
	interval time.Duration
	timeout  time.Duration
}

type ExporterOption func(*exporterOptions)

// WithConsoleWriter redirects the console exporter output, stdout by default.
func WithConsoleWriter(w io.Writer) ExporterOption {
	return func(o *exporterOptions) {
		o.writer = w
	}
}

func WithExportInterval(interval, timeout time.Duration) ExporterOption {
	return func(o *exporterOptions) {
		if interval > 0 {
			o.interval = interval
		}
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// InitMetricsExporter installs the global meter provider. The instruments
// created before the installation are delegated to it by the otel global.
func InitMetricsExporter(typ MetricsExporterType, opts ...ExporterOption) (ShutdownFunc, error) {
	o := &exporterOptions{interval: 10 * time.Second, timeout: 5 * time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	var (
		shutdown ShutdownFunc
		err      error
	)
	switch typ {
	case ConsoleExporter:
		shutdown, err = newConsoleMetricsExporter(o.writer, o.interval, o.timeout)
	case PrometheusExporter:
		shutdown, err = newPrometheusMetricsExporter()
	default:
		return noopShutdown, nil
	}
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] init "+string(typ)+" exporter")
	}
	return shutdown, nil
}
