package dirsize

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// SizeFunc returns the number of bytes to count for an entry.
type SizeFunc func(FileEntry) (int64, error)

// SnapshotSize counts the size recorded at scan time.
func SnapshotSize(entry FileEntry) (int64, error) {
	return entry.Size, nil
}

// StatSize re-reads the size of the entry from the filesystem, so files that
// vanished or became unreadable since the scan are reported as errors.
func StatSize(entry FileEntry) (int64, error) {
	info, err := os.Lstat(entry.Path)
	if err != nil {
		return 0, fmt.Errorf("stat %q: %w", entry.Path, err)
	}

	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("stat %q: not a regular file", entry.Path)
	}

	return info.Size(), nil
}

// AccumulateOptions configures Accumulate.
type AccumulateOptions struct {
	// Workers is the number of goroutines pulling from the queue (<1 = 1).
	Workers int
	// MaxTotalSize caps the adjusted total in bytes (0 = no cap).
	MaxTotalSize int64
	// ClampFileSize limits the bytes counted per file (0 = no clamp).
	ClampFileSize int64
	// Ratio returns the compression estimate for an extension (nil = DefaultRatios).
	Ratio func(ext string) float64
	// Size measures an entry (nil = SnapshotSize).
	Size SizeFunc
	// ProgressHook receives (files, bytes) on every ProgressInterval tick.
	ProgressHook func(files, bytes int64)
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug enables debug output.
	Debug bool
}

// Totals is the outcome of one Accumulate call.
type Totals struct {
	// Raw is the sum of the counted sizes.
	Raw int64
	// Adjusted is the sum of the counted sizes multiplied by their ratios.
	Adjusted int64
	// Files is the number of counted entries.
	Files int64
	// Errors is the number of entries skipped because they could not be measured.
	Errors int64
	// Breached reports whether accumulation stopped at MaxTotalSize.
	Breached bool
	// ExtStats maps extensions to their counted statistics.
	ExtStats map[string]ExtStat
	// Counted holds the counted entries in input order, Size set to the counted bytes.
	Counted []FileEntry
}

// workQueue hands out entry indices. It is filled and closed before any
// worker starts, so consumers only ever pop.
type workQueue chan int

// newWorkQueue returns a closed queue holding the indices 0..n-1.
func newWorkQueue(n int) workQueue {
	q := make(workQueue, n)
	for i := range n {
		q <- i
	}

	close(q)

	return q
}

// pop returns the next index without blocking; ok is false once the queue is empty.
func (q workQueue) pop() (int, bool) {
	select {
	case i, ok := <-q:
		return i, ok
	default:
		return 0, false
	}
}

// collector aggregates the totals of concurrent workers using a mutex.
type collector struct {
	mu            sync.Mutex // Protect concurrent access
	limit         int64
	breached      bool
	rawBytes      int64
	adjustedBytes int64
	fileCount     int64
	errorCount    int64
	extStats      map[string]ExtStat
	counted       []int64 // counted size per entry index, -1 when not counted

	stop atomic.Bool
}

// newCollector creates a collector for n entries capped at limit adjusted bytes.
func newCollector(n int, limit int64) *collector {
	counted := make([]int64, n)
	for i := range counted {
		counted[i] = -1
	}

	return &collector{
		limit:    limit,
		extStats: make(map[string]ExtStat),
		counted:  counted,
	}
}

// stopped reports whether a worker has observed a cap breach.
func (c *collector) stopped() bool {
	return c.stop.Load()
}

// addError increments the error counter.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errorCount++
}

// commit adds the entry at index i unless doing so would push the adjusted
// total past the limit. The check and the update happen under one lock, so
// the adjusted total never exceeds the limit and nothing is added after the
// first breach. It returns false when the caller should stop.
func (c *collector) commit(i int, ext string, size, adjusted int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.breached {
		return false
	}

	if c.limit > 0 && c.adjustedBytes+adjusted > c.limit {
		c.breached = true
		c.stop.Store(true)

		return false
	}

	c.rawBytes += size
	c.adjustedBytes += adjusted
	c.fileCount++

	stat := c.extStats[ext]
	stat.Count++
	stat.Size += size
	stat.AdjustedSize += adjusted
	c.extStats[ext] = stat

	c.counted[i] = size

	return true
}

// progress returns the current file count and raw bytes.
func (c *collector) progress() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.rawBytes
}

// totals produces the final Totals. It must only be called after all workers joined.
func (c *collector) totals(entries []FileEntry) *Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	counted := make([]FileEntry, 0, c.fileCount)

	for i, size := range c.counted {
		if size < 0 {
			continue
		}

		entry := entries[i]
		entry.Size = size
		counted = append(counted, entry)
	}

	return &Totals{
		Raw:      c.rawBytes,
		Adjusted: c.adjustedBytes,
		Files:    c.fileCount,
		Errors:   c.errorCount,
		Breached: c.breached,
		ExtStats: c.extStats,
		Counted:  counted,
	}
}

// Accumulate sums the sizes of entries with a fixed pool of opt.Workers goroutines.
//
// Workers pop entries from a shared queue, measure them with opt.Size, clamp
// them to opt.ClampFileSize and weight them with opt.Ratio. When adding an
// entry would push the adjusted total past opt.MaxTotalSize, that entry is
// not counted and all workers stop pulling. The cap is best-effort: the
// adjusted total never exceeds it, but with more than one worker which entries
// were counted before the stop depends on scheduling.
//
// Entries that cannot be measured are counted in Totals.Errors and skipped.
// Cancelling ctx stops the workers and returns ctx.Err().
func Accumulate(ctx context.Context, entries []FileEntry, opt AccumulateOptions) (*Totals, error) {
	log := newLogger(opt.Debug)

	workers := max(opt.Workers, 1)

	ratio := opt.Ratio
	if ratio == nil {
		ratio = DefaultRatios().Ratio
	}

	sizeOf := opt.Size
	if sizeOf == nil {
		sizeOf = SnapshotSize
	}

	collector := newCollector(len(entries), opt.MaxTotalSize)
	queue := newWorkQueue(len(entries))

	// Create child context to ensure progress reporter cleanup
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	startProgressReporter(runCtx, collector, opt.ProgressHook, opt.ProgressInterval)

	log.printf("accumulating %d entries with %d workers (cap=%d)\n", len(entries), workers, opt.MaxTotalSize)

	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for !collector.stopped() && runCtx.Err() == nil {
				i, ok := queue.pop()
				if !ok {
					return
				}

				entry := entries[i]

				size, err := sizeOf(entry)
				if err != nil {
					log.printf("skipping %s: %v\n", entry.Path, err)
					collector.addError()

					continue
				}

				if opt.ClampFileSize > 0 && size > opt.ClampFileSize {
					size = opt.ClampFileSize
				}

				if !collector.commit(i, entry.Ext, size, adjustedSize(size, ratio(entry.Ext))) {
					log.printf("size cap reached at %s\n", entry.Path)

					return
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return collector.totals(entries), nil
}
