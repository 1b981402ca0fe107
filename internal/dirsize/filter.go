package dirsize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

var (
	// ErrNotFound is returned when the scan root does not exist.
	ErrNotFound = errors.New("path not found")
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
)

// ScanResult holds the candidate entries produced by Scan.
type ScanResult struct {
	// Entries are the files that passed every filter, in SortBy order.
	Entries []FileEntry
	// ErrorCount is the number of entries that could not be inspected.
	ErrorCount int64
}

// filter holds the compiled filter configuration.
type filter struct {
	include       map[string]struct{}
	exclude       map[string]struct{}
	includeHidden bool
	maxFileSize   int64
	dropOversize  bool
	opt           Options
}

// newFilter compiles the filter configuration from opt.
func newFilter(opt Options) *filter {
	f := &filter{
		include:       make(map[string]struct{}, len(opt.FileTypes)),
		exclude:       make(map[string]struct{}, len(opt.Exclude)),
		includeHidden: opt.IncludeHidden,
		maxFileSize:   opt.MaxFileSize,
		dropOversize:  opt.policy() == OversizeDrop,
		opt:           opt,
	}

	for _, e := range opt.FileTypes { //nolint:varnamelen // e is standard for element in range
		e = strings.Trim(strings.TrimSpace(e), "'\"")
		if e == "" {
			continue
		}

		if strings.HasPrefix(e, "!") {
			f.exclude[normalizeExt(strings.TrimPrefix(e, "!"))] = struct{}{}
		} else {
			f.include[normalizeExt(e)] = struct{}{}
		}
	}

	// Exclusions match both extensions and path segments, so keep the raw
	// name alongside the normalized extension.
	for _, e := range opt.Exclude {
		e = strings.Trim(strings.TrimSpace(e), "'\"")
		if e == "" {
			continue
		}

		f.exclude[e] = struct{}{}
		if strings.HasPrefix(e, ".") {
			f.exclude[strings.ToLower(e)] = struct{}{}
		}
	}

	return f
}

// isHidden reports whether name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// excludedSegment reports whether name is in the exclusion set.
func (f *filter) excludedSegment(name string) bool {
	_, ok := f.exclude[name]

	return ok
}

// includeByExtension checks the extension allow and deny lists.
func (f *filter) includeByExtension(ext string) bool {
	if ext != "" {
		if _, ok := f.exclude[ext]; ok {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	_, ok := f.include[ext]

	return ok
}

// keep applies the per-file filters that need file metadata.
func (f *filter) keep(entry FileEntry) bool {
	if !f.includeByExtension(entry.Ext) {
		return false
	}

	if f.dropOversize && f.maxFileSize > 0 && entry.Size > f.maxFileSize {
		return false
	}

	if !f.opt.StartDate.IsZero() && entry.ModTime.Before(f.opt.StartDate) {
		return false
	}

	if !f.opt.EndDate.IsZero() && entry.ModTime.After(f.opt.EndDate) {
		return false
	}

	return true
}

// statRoot validates that root exists and is a directory.
func statRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q: %w", ErrNotFound, root, err)
		}

		return fmt.Errorf("accessing path %q: %w", root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %q", ErrNotDirectory, root)
	}

	return nil
}

// Scan walks opt.Path and returns the entries matching the filter options.
// A missing root yields ErrNotFound; a root that matches nothing yields an
// empty result and no error.
//
//nolint:gocognit,funlen // Walk callback carries all the filter decisions.
func Scan(ctx context.Context, opt Options) (*ScanResult, error) {
	log := newLogger(opt.Debug)

	if opt.Path == "" {
		opt.Path = "."
	}

	root := filepath.Clean(opt.Path)

	if err := statRoot(root); err != nil {
		return nil, err
	}

	f := newFilter(opt)

	log.printf("scanning %s (hidden=%t top-level=%t)\n", root, opt.IncludeHidden, opt.TopLevelOnly)

	var (
		mu         sync.Mutex
		entries    []FileEntry
		errorCount int64
	)

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			log.printf("error accessing path %s: %v\n", path, err)

			mu.Lock()
			errorCount++
			mu.Unlock()

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == root {
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			switch {
			case opt.TopLevelOnly:
				return filepath.SkipDir
			case !f.includeHidden && isHidden(name):
				log.printf("skipping hidden directory: %s\n", path)

				return filepath.SkipDir
			case f.excludedSegment(name):
				log.printf("excluding directory: %s\n", path)

				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if !f.includeHidden && isHidden(name) {
			return nil
		}

		if f.excludedSegment(name) {
			log.printf("excluding file: %s\n", path)

			return nil
		}

		info, err := d.Info()
		if err != nil {
			mu.Lock()
			errorCount++
			mu.Unlock()

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		entry := newFileEntry(path, root, info)

		if entry.Ext == "" && opt.SniffTypes {
			entry.Ext = sniffExt(path)
		}

		if !f.keep(entry) {
			log.printf("filtered out: %s\n", path)

			return nil
		}

		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()

		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}

		return nil, fmt.Errorf("walking %q: %w", root, walkErr)
	}

	sortEntries(entries, opt.SortBy)

	if entries == nil {
		entries = []FileEntry{}
	}

	return &ScanResult{Entries: entries, ErrorCount: errorCount}, nil
}

// sortEntries orders entries in place. SortNone orders by path so that the
// parallel walk still yields a stable sequence.
func sortEntries(entries []FileEntry, key SortKey) {
	switch key {
	case SortSize:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Size != entries[j].Size {
				return entries[i].Size > entries[j].Size
			}

			return entries[i].RelPath < entries[j].RelPath
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].RelPath < entries[j].RelPath
		})
	}
}
