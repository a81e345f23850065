package bench

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xstl/lib/alloc"
	"github.com/benz9527/xstl/lib/hrtime"
	"github.com/benz9527/xstl/lib/infra"
)

var errVerify = errors.New("[bench] verification failed")

type Result struct {
	Name          string
	Container     ContainerKind
	Size          int
	Len           int64
	AllocFailures int
	Insert        time.Duration
	Find          time.Duration
	Iterate       time.Duration
	Erase         time.Duration
	Total         time.Duration
	Err           error
}

func perOp(d time.Duration, ops int) int64 {
	if ops <= 0 {
		return 0
	}
	return d.Nanoseconds() / int64(ops)
}

func (r *Result) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("case", r.Name)
	enc.AddString("container", string(r.Container))
	enc.AddInt("size", r.Size)
	enc.AddInt64("len", r.Len)
	enc.AddInt("allocFailures", r.AllocFailures)
	enc.AddInt64("insertNsPerOp", perOp(r.Insert, r.Size))
	enc.AddInt64("findNsPerOp", perOp(r.Find, r.Size))
	enc.AddInt64("iterateNsPerOp", perOp(r.Iterate, int(r.Len)))
	enc.AddDuration("erase", r.Erase)
	enc.AddDuration("total", r.Total)
	return nil
}

// caseKeys draws the insertion sequence. The unique kinds get a
// permutation, the multi kinds draw from the key space with repeats.
func caseKeys(cfg CaseConfig, rng *randv2.Rand, multi bool) []int {
	if !multi || cfg.KeySpace <= 0 {
		return rng.Perm(cfg.Size)
	}
	keys := make([]int, cfg.Size)
	for i := range keys {
		keys[i] = rng.IntN(cfg.KeySpace)
	}
	return keys
}

// verifyIteration checks the iteration order of the keys against the
// expected counts. Ordered kinds are non-decreasing, hashed kinds keep
// the equal keys adjacent.
func verifyIteration(keys []int, counts map[int]int, ordered, multi bool) error {
	var merr error
	if len(keys) != lo.Sum(lo.Values(counts)) {
		merr = multierr.Append(merr, fmt.Errorf("iterated %d keys, expect %d", len(keys), lo.Sum(lo.Values(counts))))
	}
	if ordered && !slices.IsSorted(keys) {
		merr = multierr.Append(merr, errors.New("keys are out of order"))
	}
	closed := make(map[int]struct{}, len(counts))
	for i, k := range keys {
		if i > 0 && keys[i-1] != k {
			closed[keys[i-1]] = struct{}{}
		}
		if _, ok := closed[k]; ok {
			merr = multierr.Append(merr, fmt.Errorf("equal keys %d are not adjacent", k))
			break
		}
		if !multi && i > 0 && keys[i-1] == k {
			merr = multierr.Append(merr, fmt.Errorf("duplicated key %d", k))
			break
		}
	}
	return merr
}

type caseRunner struct {
	cfg    CaseConfig
	drv    driver
	opts   *driverOptions
	seed   uint64
	stream uint64
	logger *zap.Logger
}

func (cr *caseRunner) verify(c container, counts map[int]int) error {
	var merr error
	expected := int64(lo.Sum(lo.Values(counts)))
	if c.len() != expected {
		merr = multierr.Append(merr, fmt.Errorf("len %d, expect %d", c.len(), expected))
	}
	for k, n := range counts {
		if !c.find(k) {
			merr = multierr.Append(merr, fmt.Errorf("key %d is missing", k))
			break
		}
		if got := c.count(k); got != n {
			merr = multierr.Append(merr, fmt.Errorf("count(%d) = %d, expect %d", k, got, n))
			break
		}
	}
	return multierr.Append(merr, verifyIteration(c.keys(), counts, cr.drv.ordered, cr.drv.multi))
}

func (cr *caseRunner) run(ctx context.Context) (res *Result) {
	res = &Result{Name: cr.cfg.Name, Container: cr.cfg.Container, Size: cr.cfg.Size}
	sw := hrtime.NewStopwatch(hrtime.MonotonicClock)
	defer func() {
		if r := recover(); r != nil {
			res.Err = infra.NewErrorStack(fmt.Sprintf("[bench] case %s panic: %v", cr.cfg.Name, r))
		}
		res.Total = sw.Elapsed()
		if res.Err != nil {
			res.Err = infra.WrapErrorStackWithMessage(res.Err, "[bench] case "+cr.cfg.Name)
		}
	}()

	rng := randv2.New(randv2.NewPCG(cr.seed, cr.stream))
	keys := caseKeys(cr.cfg, rng, cr.drv.multi)
	counts := make(map[int]int, len(keys))
	c := cr.drv.create(cr.opts)
	defer c.clear()

	for round := 0; round < cr.cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		c.clear()
		clear(counts)
		res.AllocFailures = 0

		sw.Lap()
		for _, k := range keys {
			ok, err := c.insert(k)
			if errors.Is(err, alloc.ErrAllocFailed) {
				res.AllocFailures++
				continue
			} else if err != nil {
				res.Err = err
				return res
			}
			if ok {
				counts[k]++
			}
		}
		res.Insert += sw.Lap()

		for _, k := range keys {
			if _, ok := counts[k]; ok && !c.find(k) {
				res.Err = fmt.Errorf("%w: key %d inserted but not found", errVerify, k)
				return res
			}
		}
		res.Find += sw.Lap()

		iterated := c.keys()
		res.Iterate += sw.Lap()
		res.Len = int64(len(iterated))

		if err := cr.verify(c, counts); err != nil {
			res.Err = multierr.Append(errVerify, err)
			return res
		}
		cp, err := c.clone()
		if err != nil && !errors.Is(err, alloc.ErrAllocFailed) {
			res.Err = err
			return res
		} else if err == nil {
			if cr.drv.ordered && !slices.Equal(cp.keys(), iterated) {
				res.Err = fmt.Errorf("%w: clone iterates differently", errVerify)
				return res
			}
			cp.clear()
		}

		sw.Lap()
		erased := 0
		for i, k := range keys {
			if i%2 != 0 {
				continue
			}
			n := c.eraseKey(k)
			if n != counts[k] {
				res.Err = fmt.Errorf("%w: erase(%d) = %d, expect %d", errVerify, k, n, counts[k])
				return res
			}
			erased += n
			delete(counts, k)
		}
		res.Erase += sw.Lap()
		if err := cr.verify(c, counts); err != nil {
			res.Err = multierr.Append(errVerify, err)
			return res
		}
		cr.logger.Debug("case round done",
			zap.String("case", cr.cfg.Name),
			zap.Int("round", round),
			zap.Int("erased", erased),
		)
	}
	return res
}
