package bench

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xstl/lib/hrtime"
	"github.com/benz9527/xstl/lib/infra"
	"github.com/benz9527/xstl/lib/kv"
	"github.com/benz9527/xstl/lib/runtime"
	"github.com/benz9527/xstl/lib/xlog"
	"github.com/benz9527/xstl/observability"
)

type Report struct {
	Name      string
	StartedAt time.Time
	Elapsed   time.Duration
	Env       runtime.Env
	RSSBefore uint64
	RSSAfter  uint64
	Results   []*Result
}

func (r *Report) Failed() []*Result {
	failed := make([]*Result, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err aggregates the errors of the failed cases.
func (r *Report) Err() error {
	var merr error
	for _, res := range r.Failed() {
		merr = multierr.Append(merr, res.Err)
	}
	return merr
}

func (r *Report) Log(logger xlog.XLogger) {
	for _, res := range r.Results {
		if res.Err != nil {
			logger.ErrorStack(res.Err, "bench case failed", zap.Object("result", res))
			continue
		}
		logger.Info("bench case passed", zap.Object("result", res))
	}
	logger.Info("bench done",
		zap.String("name", r.Name),
		zap.Time("startedAt", r.StartedAt),
		zap.Duration("elapsed", r.Elapsed),
		zap.Int("cases", len(r.Results)),
		zap.Int("failed", len(r.Failed())),
		zap.Uint64("rssBefore", r.RSSBefore),
		zap.Uint64("rssAfter", r.RSSAfter),
		r.Env.Field(),
	)
}

type Runner struct {
	cfg     *Config
	logger  xlog.XLogger
	zlogger *zap.Logger
	pool    *ants.Pool
	results kv.ThreadSafeStorer[string, *Result]
	stats   *benchStats
}

// NewRunner prepares the worker pool. Zero workers mean one per case.
func NewRunner(cfg *Config, logger xlog.XLogger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = len(cfg.Cases)
	}
	pool, err := ants.NewPool(workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
	)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[bench] new worker pool")
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger,
		zlogger: xlog.NewComponentLogger(logger, "xstl.bench"),
		pool:    pool,
		results: kv.NewThreadSafeMap[string, *Result](
			kv.WithThreadSafeMapInitCap[string, *Result](uint64(len(cfg.Cases))),
		),
		stats: newBenchStats(cfg.Name),
	}, nil
}

func (r *Runner) caseRunner(idx int, cc CaseConfig) *caseRunner {
	opts := &driverOptions{
		cfg:    cc,
		logger: xlog.NewComponentLogger(r.logger, "xstl."+string(cc.Container)),
	}
	if r.cfg.Metrics.Exporter != string(observability.NoopExporter) {
		opts.statsName = r.cfg.Name + "/" + cc.Name
	}
	return &caseRunner{
		cfg:    cc,
		drv:    drivers[cc.Container],
		opts:   opts,
		seed:   r.cfg.Seed,
		stream: uint64(idx),
		logger: r.zlogger,
	}
}

func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	report := &Report{
		Name:      r.cfg.Name,
		StartedAt: hrtime.NowInUTC(),
	}
	var envErr error
	if report.Env, envErr = runtime.DetectEnv(); envErr != nil {
		r.zlogger.Warn("detect run env partially failed", zap.Error(envErr))
	}
	report.RSSBefore, _ = observability.ProcessRSS()
	sw := hrtime.NewStopwatch(hrtime.MonotonicClock)

	if err := r.results.Purge(); err != nil {
		return nil, err
	}
	wg := sync.WaitGroup{}
	var submitErr error
	for i, cc := range r.cfg.Cases {
		cr := r.caseRunner(i, cc)
		wg.Add(1)
		if err := r.pool.Submit(func() {
			defer wg.Done()
			res := cr.run(ctx)
			r.stats.RecordResult(res)
			if err := r.results.AddOrUpdate(res.Name, res); err != nil {
				r.zlogger.Warn("store bench result failed", zap.String("case", res.Name), zap.Error(err))
			}
		}); err != nil {
			wg.Done()
			submitErr = multierr.Append(submitErr, infra.WrapErrorStackWithMessage(err, "[bench] submit case "+cc.Name))
		}
	}
	wg.Wait()

	report.Elapsed = sw.Elapsed()
	report.RSSAfter, _ = observability.ProcessRSS()
	report.Results = r.results.ListValues()
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Name < report.Results[j].Name
	})
	return report, submitErr
}

func (r *Runner) Release() {
	r.pool.Release()
}
