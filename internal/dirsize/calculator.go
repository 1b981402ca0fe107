package dirsize

import (
	"context"
	"path/filepath"
	"time"
)

// Calculator runs size calculations and remembers the raw total of every
// analyzed root for its own lifetime.
type Calculator struct {
	cache *SizeCache
}

// NewCalculator creates a calculator with its own SizeCache.
func NewCalculator(cacheOpt CacheOptions) *Calculator {
	return &Calculator{cache: NewSizeCache(cacheOpt)}
}

// CachedSize returns the raw total recorded by the last run on path.
func (c *Calculator) CachedSize(path string) (int64, bool) {
	return c.cache.Get(path)
}

// Invalidate drops cached totals for path, its descendants and its ancestors.
func (c *Calculator) Invalidate(path string) int {
	return c.cache.Invalidate(path)
}

// Purge drops every cached total.
func (c *Calculator) Purge() {
	c.cache.Purge()
}

// run tracks the state of a single calculation.
type run struct {
	state State
	hook  func(State)
	log   logger
}

// transition moves the run to next and notifies the state hook.
func (r *run) transition(next State) {
	r.log.printf("state: %s -> %s\n", r.state, next)
	r.state = next

	if r.hook != nil {
		r.hook(next)
	}
}

// Run performs a size calculation and returns the report.
// It scans opt.Path with the filter options, sums the candidate sizes with
// opt.Workers goroutines and records the raw total in the cache.
//
// A missing root fails with ErrNotFound before any worker starts. Reaching
// opt.MaxTotalSize is not an error: the report then carries the partial total
// and State CapBreached. Progress updates are sent to progressHook if provided.
func (c *Calculator) Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	r := &run{state: Idle, hook: opt.StateHook, log: newLogger(opt.Debug)}

	if err := opt.Validate(); err != nil {
		return nil, err
	}

	if opt.Path == "" {
		opt.Path = "."
	}

	root := filepath.Clean(opt.Path)
	start := time.Now()

	r.transition(Filtering)

	scan, err := Scan(ctx, opt)
	if err != nil {
		return nil, err
	}

	r.log.printf("%d candidate files, %d errors\n", len(scan.Entries), scan.ErrorCount)

	ratios := opt.Ratios
	if ratios == nil {
		ratios = DefaultRatios()
	}

	var clamp int64
	if opt.policy() == OversizeClamp {
		clamp = opt.MaxFileSize
	}

	r.transition(Accumulating)

	totals, err := Accumulate(ctx, scan.Entries, AccumulateOptions{
		Workers:          opt.Workers,
		MaxTotalSize:     opt.MaxTotalSize,
		ClampFileSize:    clamp,
		Ratio:            ratios.Ratio,
		Size:             StatSize,
		ProgressHook:     progressHook,
		ProgressInterval: opt.ProgressInterval,
		Debug:            opt.Debug,
	})
	if err != nil {
		return nil, err
	}

	report := newReport(root, opt, scan, totals)
	report.Elapsed = time.Since(start)

	r.transition(report.State)

	c.cache.Set(root, totals.Raw)

	r.transition(Reported)

	return report, nil
}

// Run performs a size calculation with a fresh Calculator.
func Run(ctx context.Context, opt Options, progressHook func(int64, int64)) (*Report, error) {
	return NewCalculator(CacheOptions{}).Run(ctx, opt, progressHook)
}
