package dirsize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticEntries returns n entries alternating between a compressible and
// an incompressible extension, together with their total size.
func syntheticEntries(n int) ([]FileEntry, int64) {
	entries := make([]FileEntry, n)

	var total int64

	for i := range entries {
		ext := ".txt"
		if i%2 == 1 {
			ext = ".zip"
		}

		size := int64(i%1000 + 1)
		total += size

		entries[i] = FileEntry{
			Path:    fmt.Sprintf("/synthetic/file%05d%s", i, ext),
			RelPath: fmt.Sprintf("file%05d%s", i, ext),
			Ext:     ext,
			Size:    size,
		}
	}

	return entries, total
}

func uniform(ratio float64) func(string) float64 {
	return func(string) float64 { return ratio }
}

func TestAccumulate_RawTotalIndependentOfWorkers(t *testing.T) {
	entries, total := syntheticEntries(500)

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers_%d", workers), func(t *testing.T) {
			totals, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: workers})
			require.NoError(t, err)

			assert.Equal(t, total, totals.Raw)
			assert.Equal(t, int64(len(entries)), totals.Files)
			assert.False(t, totals.Breached)
			assert.Zero(t, totals.Errors)
		})
	}
}

func TestAccumulate_NoLostOrDoubleCountedEntries(t *testing.T) {
	entries, total := syntheticEntries(10_000)

	sequential, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: 1})
	require.NoError(t, err)
	require.Equal(t, total, sequential.Raw)

	for _, workers := range []int{4, 16, 64} {
		parallel, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: workers})
		require.NoError(t, err)

		assert.Equal(t, sequential.Raw, parallel.Raw, "workers=%d", workers)
		assert.Equal(t, sequential.Adjusted, parallel.Adjusted, "workers=%d", workers)
		assert.Equal(t, sequential.Files, parallel.Files, "workers=%d", workers)
		assert.Len(t, parallel.Counted, len(entries), "workers=%d", workers)
		assert.Equal(t, sequential.ExtStats, parallel.ExtStats, "workers=%d", workers)
	}
}

func TestAccumulate_AdjustedTotal(t *testing.T) {
	entries, _ := syntheticEntries(200)

	t.Run("never_above_raw", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: 4})
		require.NoError(t, err)

		assert.LessOrEqual(t, totals.Adjusted, totals.Raw)
		assert.Less(t, totals.Adjusted, totals.Raw, ".txt entries have a ratio below 1")
	})

	t.Run("equals_raw_without_registered_ratios", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers: 4,
			Ratio:   Ratios{}.Ratio,
		})
		require.NoError(t, err)

		assert.Equal(t, totals.Raw, totals.Adjusted)
	})

	t.Run("per_extension_breakdown", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: 4})
		require.NoError(t, err)

		txt := totals.ExtStats[".txt"]
		zip := totals.ExtStats[".zip"]

		assert.Equal(t, 100, txt.Count)
		assert.Equal(t, 100, zip.Count)
		assert.Equal(t, zip.Size, zip.AdjustedSize)
		assert.Equal(t, totals.Raw, txt.Size+zip.Size)
		assert.Equal(t, totals.Adjusted, txt.AdjustedSize+zip.AdjustedSize)
	})
}

func TestAccumulate_Idempotent(t *testing.T) {
	entries, _ := syntheticEntries(1000)
	opt := AccumulateOptions{Workers: 8}

	first, err := Accumulate(context.Background(), entries, opt)
	require.NoError(t, err)

	second, err := Accumulate(context.Background(), entries, opt)
	require.NoError(t, err)

	assert.Equal(t, first.Raw, second.Raw)
	assert.Equal(t, first.Adjusted, second.Adjusted)
	assert.Equal(t, first.Files, second.Files)
}

func TestAccumulate_SizeCap(t *testing.T) {
	entries := []FileEntry{
		{Path: "a", Ext: ".bin", Size: 100},
		{Path: "b", Ext: ".bin", Size: 100},
		{Path: "c", Ext: ".bin", Size: 100},
	}

	t.Run("entry_that_breaches_is_not_counted", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers:      1,
			MaxTotalSize: 250,
			Ratio:        uniform(1),
		})
		require.NoError(t, err)

		assert.True(t, totals.Breached)
		assert.Equal(t, int64(200), totals.Raw)
		assert.Equal(t, int64(200), totals.Adjusted)
		assert.Equal(t, int64(2), totals.Files)
		assert.Equal(t, []string{"a", "b"}, paths(totals.Counted))
	})

	t.Run("cap_equal_to_total_is_not_a_breach", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers:      1,
			MaxTotalSize: 300,
			Ratio:        uniform(1),
		})
		require.NoError(t, err)

		assert.False(t, totals.Breached)
		assert.Equal(t, int64(300), totals.Raw)
	})

	t.Run("cap_applies_to_adjusted_size", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers:      1,
			MaxTotalSize: 150,
			Ratio:        uniform(0.5),
		})
		require.NoError(t, err)

		assert.False(t, totals.Breached)
		assert.Equal(t, int64(300), totals.Raw)
		assert.Equal(t, int64(150), totals.Adjusted)
	})

	t.Run("first_entry_above_cap", func(t *testing.T) {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers:      1,
			MaxTotalSize: 50,
			Ratio:        uniform(1),
		})
		require.NoError(t, err)

		assert.True(t, totals.Breached)
		assert.Zero(t, totals.Raw)
		assert.Zero(t, totals.Files)
		assert.Empty(t, totals.Counted)
	})
}

func TestAccumulate_CapNeverExceededConcurrently(t *testing.T) {
	entries, total := syntheticEntries(10_000)
	limit := total / 10

	for range 20 {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers:      16,
			MaxTotalSize: limit,
			Ratio:        uniform(1),
		})
		require.NoError(t, err)

		assert.True(t, totals.Breached)
		assert.LessOrEqual(t, totals.Adjusted, limit)
		assert.Equal(t, totals.Raw, totals.Adjusted)
		assert.Less(t, totals.Files, int64(len(entries)))
		assert.Len(t, totals.Counted, int(totals.Files))
	}
}

func TestAccumulate_CapMonotonicity(t *testing.T) {
	entries, total := syntheticEntries(300)

	previous := int64(-1)

	for limit := total; limit > 0; limit -= total / 17 {
		totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
			Workers:      1,
			MaxTotalSize: limit,
		})
		require.NoError(t, err)
		require.LessOrEqual(t, totals.Adjusted, limit)

		if previous >= 0 {
			assert.LessOrEqual(t, totals.Adjusted, previous, "limit=%d", limit)
		}

		previous = totals.Adjusted
	}
}

func TestAccumulate_SizeErrorsAreSkipped(t *testing.T) {
	entries, _ := syntheticEntries(100)

	var want int64

	for i, entry := range entries {
		if i%2 == 0 {
			want += entry.Size
		}
	}

	failing := func(entry FileEntry) (int64, error) {
		if entry.Ext == ".zip" {
			return 0, os.ErrPermission
		}

		return entry.Size, nil
	}

	totals, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: 4, Size: failing})
	require.NoError(t, err)

	assert.Equal(t, int64(50), totals.Errors)
	assert.Equal(t, int64(50), totals.Files)
	assert.Equal(t, want, totals.Raw)
}

func TestAccumulate_StatSizeSkipsVanishedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.bin", 300)
	gone := writeFile(t, root, "gone.bin", 700)

	scan, err := Scan(context.Background(), Options{Path: root})
	require.NoError(t, err)
	require.Len(t, scan.Entries, 2)

	require.NoError(t, os.Remove(gone))

	totals, err := Accumulate(context.Background(), scan.Entries, AccumulateOptions{Workers: 2, Size: StatSize})
	require.NoError(t, err)

	assert.Equal(t, int64(300), totals.Raw)
	assert.Equal(t, int64(1), totals.Files)
	assert.Equal(t, int64(1), totals.Errors)
}

func TestAccumulate_ClampFileSize(t *testing.T) {
	entries := []FileEntry{
		{Path: "small", Size: 10},
		{Path: "large", Size: 5000},
	}

	totals, err := Accumulate(context.Background(), entries, AccumulateOptions{
		Workers:       2,
		ClampFileSize: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(110), totals.Raw)
	require.Len(t, totals.Counted, 2)
	assert.Equal(t, int64(10), totals.Counted[0].Size)
	assert.Equal(t, int64(100), totals.Counted[1].Size)
}

func TestAccumulate_CountedKeepsInputOrder(t *testing.T) {
	entries, _ := syntheticEntries(50)

	totals, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, paths(entries), paths(totals.Counted))
}

func TestAccumulate_EmptyInput(t *testing.T) {
	totals, err := Accumulate(context.Background(), nil, AccumulateOptions{Workers: 4, MaxTotalSize: 10})
	require.NoError(t, err)

	assert.Zero(t, totals.Raw)
	assert.Zero(t, totals.Adjusted)
	assert.Zero(t, totals.Files)
	assert.False(t, totals.Breached)
	assert.Empty(t, totals.Counted)
}

func TestAccumulate_InvalidWorkerCount(t *testing.T) {
	entries, total := syntheticEntries(10)

	totals, err := Accumulate(context.Background(), entries, AccumulateOptions{Workers: 0})
	require.NoError(t, err)

	assert.Equal(t, total, totals.Raw)
}

func TestAccumulate_Cancelled(t *testing.T) {
	entries, _ := syntheticEntries(100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Accumulate(ctx, entries, AccumulateOptions{Workers: 4})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAccumulate_ProgressHook(t *testing.T) {
	entries, _ := syntheticEntries(100)

	var calls atomic.Int32

	slow := func(entry FileEntry) (int64, error) {
		time.Sleep(2 * time.Millisecond)

		return entry.Size, nil
	}

	_, err := Accumulate(context.Background(), entries, AccumulateOptions{
		Workers:          1,
		Size:             slow,
		ProgressInterval: 5 * time.Millisecond,
		ProgressHook: func(files, bytes int64) {
			calls.Add(1)
		},
	})
	require.NoError(t, err)

	assert.Positive(t, calls.Load())
}

func TestWorkQueue_DeliversEachIndexOnce(t *testing.T) {
	queue := newWorkQueue(5)

	var got []int

	for {
		i, ok := queue.pop()
		if !ok {
			break
		}

		got = append(got, i)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	_, ok := queue.pop()
	assert.False(t, ok)
}

func paths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Path
	}

	return out
}

func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))

	return path
}
