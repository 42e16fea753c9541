package fetch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xfery/dropship-backend/pkg/config"
)

// Pool runs batched external fetches under a shared token bucket so the
// supplier's rate limits hold regardless of request fan-out. It replaces
// serial fixed-delay loops with bounded concurrency.
type Pool struct {
	limiter     *rate.Limiter
	concurrency int
}

// NewPool builds a fetch pool from configuration. An interval of 1s with
// concurrency 2 allows two in-flight calls paced at one per second overall.
func NewPool(cfg config.FetchConfig) *Pool {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		concurrency: concurrency,
	}
}

// Collect fetches one result per key, preserving input order. Failed keys
// are dropped from the result slice; their errors come back aggregated so
// the caller can decide whether partial results are acceptable.
func Collect[T any](ctx context.Context, p *Pool, keys []string, fn func(context.Context, string) (T, error)) ([]T, error) {
	if p == nil {
		return nil, fmt.Errorf("fetch pool is required")
	}
	if len(keys) == 0 {
		return nil, nil
	}

	type slot struct {
		value T
		ok    bool
		err   error
	}
	slots := make([]slot, len(keys))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)

	for i, key := range keys {
		group.Go(func() error {
			if err := p.limiter.Wait(groupCtx); err != nil {
				slots[i] = slot{err: err}
				// Context gone; stop scheduling more work.
				return err
			}
			value, err := fn(groupCtx, key)
			if err != nil {
				slots[i] = slot{err: fmt.Errorf("fetch %q: %w", key, err)}
				return nil
			}
			slots[i] = slot{value: value, ok: true}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	results := make([]T, 0, len(keys))
	var errs error
	for _, s := range slots {
		if s.ok {
			results = append(results, s.value)
			continue
		}
		errs = multierr.Append(errs, s.err)
	}
	return results, errs
}
