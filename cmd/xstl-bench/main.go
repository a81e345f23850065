package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xstl/bench"
	"github.com/benz9527/xstl/lib/xlog"
	"github.com/benz9527/xstl/observability"
)

type runFlags struct {
	config      string
	workers     int
	metrics     string
	metricsAddr string
	logLevel    string
}

func newXLogger(cfg *bench.Config) xlog.XLogger {
	enc, _ := xlog.ParseLogEncoderType(cfg.Log.Encoder)
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerConsoleCore(),
	}
	if cfg.Log.Level != "" {
		opts = append(opts, xlog.WithXLoggerLevel(xlog.LogLevel(strings.ToUpper(cfg.Log.Level))))
	}
	return xlog.NewXLogger(opts...)
}

func registerMetrics(lc fx.Lifecycle, cfg *bench.Config, logger xlog.XLogger) error {
	typ, err := observability.ParseMetricsExporterType(cfg.Metrics.Exporter)
	if err != nil {
		return err
	}
	shutdown, err := observability.InitMetricsExporter(typ,
		observability.WithExportInterval(cfg.Metrics.Interval, 0),
	)
	if err != nil {
		return err
	}
	statsCtx, cancel := context.WithCancel(context.Background())
	observability.InitAppStats(statsCtx, cfg.Name, nil)

	var srv *http.Server
	if typ == observability.PrometheusExporter && cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if srv == nil {
				return nil
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped", zap.String("addr", srv.Addr))
				}
			}()
			logger.Info("metrics server started", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			if srv != nil {
				_ = srv.Shutdown(ctx)
			}
			return shutdown(ctx)
		},
	})
	return nil
}

func newRunner(lc fx.Lifecycle, cfg *bench.Config, logger xlog.XLogger) (*bench.Runner, error) {
	runner, err := bench.NewRunner(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() error {
		runner.Release()
		return logger.Sync()
	}))
	return runner, nil
}

func runBench(ctx context.Context, cfg *bench.Config) error {
	var (
		runner *bench.Runner
		logger xlog.XLogger
	)
	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(newXLogger, newRunner),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(registerMetrics),
		fx.Populate(&runner, &logger),
	)
	if err := app.Err(); err != nil {
		return err
	}

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	}))
	if err != nil {
		logger.Warn("set GOMAXPROCS failed", zap.Error(err))
	}
	defer undo()

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		return err
	}

	report, runErr := runner.Run(ctx)
	if report != nil {
		report.Log(logger)
		if runErr == nil {
			runErr = report.Err()
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer stopCancel()
	if err = app.Stop(stopCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func loadConfig(flags *runFlags) (*bench.Config, error) {
	var (
		cfg *bench.Config
		err error
	)
	if flags.config != "" {
		if cfg, err = bench.LoadConfig(flags.config); err != nil {
			return nil, err
		}
	} else {
		cfg = bench.DefaultConfig()
	}
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if flags.metrics != "" {
		cfg.Metrics.Exporter = flags.metrics
	}
	if flags.metricsAddr != "" {
		cfg.Metrics.Addr = flags.metricsAddr
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, cfg.Validate()
}

func newRunCommand() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the verification and benchmark cases over the containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runBench(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "bench YAML config, all containers with the defaults if empty")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "worker pool size, overrides the config")
	cmd.Flags().StringVar(&flags.metrics, "metrics", "", "metrics exporter: console, prometheus or none")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve the prometheus metrics on the address")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN or ERROR")
	return cmd
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "xstl-bench",
		Short:         "Exercise the xstl ordered and hashed containers",
		SilenceUsage:  true,
	}
	root.AddCommand(newRunCommand())
	return root
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
