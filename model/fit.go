package model

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/paxcast/timeseries"
)

var (
	// ErrTimeout is returned for a fit that exceeded Options.Timeout.
	ErrTimeout = errors.New("model: fit timed out")
	// ErrPanic is returned for a fit that panicked.
	ErrPanic = errors.New("model: fit panicked")
)

// Options controls FitAll.
type Options struct {
	Workers int           // Concurrent fits (default: NumCPU)
	Timeout time.Duration // Per-model fit timeout (default: 2m)
}

// DefaultOptions returns NumCPU workers and a two minute timeout.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU(), Timeout: 2 * time.Minute}
}

// Result is the outcome of fitting one catalog entry. Exactly one of
// Fitted and Err is set.
type Result struct {
	Name     string
	Spec     Spec
	Fitted   Fitted
	Err      error
	Duration time.Duration
}

// OK reports whether the fit succeeded.
func (r Result) OK() bool {
	return r.Err == nil && r.Fitted != nil
}

// FitAll fits every catalog entry to train and returns the results in
// catalog order. Failures are recorded per entry. The logger attached to
// ctx, if any, receives one event per fit.
func FitAll(ctx context.Context, train *timeseries.Series, catalog *Catalog, opts Options) []Result {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	log := zerolog.Ctx(ctx)
	entries := catalog.Entries()
	results := make([]Result, len(entries))

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, e := range entries {
		g.Go(func() error {
			r := fitOne(ctx, e, train, opts.Timeout)
			results[i] = r

			if r.Err != nil {
				log.Warn().Err(r.Err).
					Str("model", r.Name).
					Str("spec", e.Spec.String()).
					Dur("duration", r.Duration).
					Msg("model fit failed")
				return nil
			}
			log.Info().
				Str("model", r.Name).
				Str("fitted", r.Fitted.Describe()).
				Float64("aicc", r.Fitted.Criteria().AICc).
				Dur("duration", r.Duration).
				Msg("model fitted")
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func fitOne(ctx context.Context, e Entry, train *timeseries.Series, timeout time.Duration) (r Result) {
	r = Result{Name: e.Name, Spec: e.Spec}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r.Fitted = nil
			r.Err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
		r.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}

	fitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fitted, err := e.Spec.fit(fitCtx, e.Name, train)
	if err != nil {
		if ctx.Err() == nil && errors.Is(fitCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		r.Err = fmt.Errorf("%s: %w", e.Name, err)
		return r
	}
	r.Fitted = fitted
	return r
}

// Successful returns the fitted models of the successful results, in order.
func Successful(results []Result) []Fitted {
	var out []Fitted
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Fitted)
		}
	}
	return out
}

// Failed returns the failed results, in order.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
