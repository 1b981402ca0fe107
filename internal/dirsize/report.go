package dirsize

import (
	"path"
	"sort"
	"time"
)

// ExtStat represents statistics for a file extension.
type ExtStat struct {
	// Count is the number of files with this extension.
	Count int `json:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
	// AdjustedSize is the cumulative size after applying the compression estimate.
	AdjustedSize int64 `json:"adjusted_size"`
}

// FileStat represents a single file path and size.
type FileStat struct {
	// Path is the file or directory path, relative to the root.
	Path string `json:"path"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Filters records the filter parameters a report was produced with.
type Filters struct {
	FileTypes      []string       `json:"file_types,omitempty"`
	Exclude        []string       `json:"exclude,omitempty"`
	IncludeHidden  bool           `json:"include_hidden"`
	MaxFileSize    int64          `json:"max_file_size,omitempty"`
	OversizePolicy OversizePolicy `json:"oversize_policy,omitempty"`
	MaxTotalSize   int64          `json:"max_total_size,omitempty"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	SortBy         SortKey        `json:"sort_by,omitempty"`
	TopLevelOnly   bool           `json:"top_level_only"`
}

// Report holds the outcome of a size calculation.
type Report struct {
	// Root is the analyzed directory.
	Root string `json:"root"`
	// State is the terminal state of the accumulation (Completed or CapBreached).
	State State `json:"state"`
	// ScannedCount is the number of entries that passed the filters.
	ScannedCount int `json:"scanned_count"`
	// FileCount is the number of counted files or, in directory mode, directories.
	FileCount int64 `json:"file_count"`
	// TotalBytes is the cumulative size of all counted files.
	TotalBytes int64 `json:"total_bytes"`
	// AdjustedBytes is the cumulative size after compression estimates.
	AdjustedBytes int64 `json:"adjusted_bytes"`
	// ExtStats maps file extensions to their statistics.
	ExtStats map[string]ExtStat `json:"ext_stats"`
	// TopFiles contains the N largest files or directories, smallest first.
	TopFiles []FileStat `json:"top_files"`
	// ErrorCount is the number of errors encountered while scanning and measuring.
	ErrorCount int64 `json:"error_count"`
	// CapBreached reports whether MaxTotalSize stopped the accumulation.
	CapBreached bool `json:"cap_breached"`
	// Workers is the number of accumulator goroutines used.
	Workers int `json:"workers"`
	// Elapsed is the total time taken for analysis.
	Elapsed time.Duration `json:"elapsed"`
	// DirectoryMode indicates whether analyzing directories instead of files.
	DirectoryMode bool `json:"directory_mode"`
	// TopN is the number of top results tracked.
	TopN int `json:"top_n"`
	// Filters are the filter parameters of the run.
	Filters Filters `json:"filters"`
	// Entries are the counted files in scan order.
	Entries []FileEntry `json:"-"`
}

// Size formats TotalBytes with the given unit floor.
func (r *Report) Size(unit Unit) string {
	return FormatSize(r.TotalBytes, unit)
}

// filtersOf captures the filter parameters of opt.
func filtersOf(opt Options) Filters {
	filters := Filters{
		FileTypes:     opt.FileTypes,
		Exclude:       opt.Exclude,
		IncludeHidden: opt.IncludeHidden,
		MaxFileSize:   opt.MaxFileSize,
		MaxTotalSize:  opt.MaxTotalSize,
		SortBy:        opt.SortBy,
		TopLevelOnly:  opt.TopLevelOnly,
	}

	if opt.MaxFileSize > 0 {
		filters.OversizePolicy = opt.policy()
	}

	if !opt.StartDate.IsZero() {
		start := opt.StartDate
		filters.StartDate = &start
	}

	if !opt.EndDate.IsZero() {
		end := opt.EndDate
		filters.EndDate = &end
	}

	return filters
}

// newReport produces the Report of a run from the scan and accumulation results.
// It extracts the top N files or directories by size.
func newReport(root string, opt Options, scan *ScanResult, totals *Totals) *Report {
	topN := opt.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	report := &Report{
		Root:          root,
		State:         Completed,
		ScannedCount:  len(scan.Entries),
		FileCount:     totals.Files,
		TotalBytes:    totals.Raw,
		AdjustedBytes: totals.Adjusted,
		ExtStats:      totals.ExtStats,
		ErrorCount:    scan.ErrorCount + totals.Errors,
		CapBreached:   totals.Breached,
		Workers:       max(opt.Workers, 1),
		DirectoryMode: opt.DirsMode,
		TopN:          topN,
		Filters:       filtersOf(opt),
		Entries:       totals.Counted,
	}

	if totals.Breached {
		report.State = CapBreached
	}

	var topFiles []FileStat

	if opt.DirsMode {
		dirSizes := make(map[string]int64)
		for _, entry := range totals.Counted {
			dirSizes[path.Dir(entry.RelPath)] += entry.Size
		}

		topFiles = make([]FileStat, 0, len(dirSizes))
		for dirPath, size := range dirSizes {
			topFiles = append(topFiles, FileStat{Path: dirPath, Size: size})
		}

		report.FileCount = int64(len(dirSizes))
	} else {
		topFiles = make([]FileStat, 0, len(totals.Counted))
		for _, entry := range totals.Counted {
			topFiles = append(topFiles, FileStat{Path: entry.RelPath, Size: entry.Size})
		}
	}

	// Sort by size (largest first) and trim to top N
	sort.SliceStable(topFiles, func(i, j int) bool {
		if topFiles[i].Size != topFiles[j].Size {
			return topFiles[i].Size > topFiles[j].Size
		}

		return topFiles[i].Path < topFiles[j].Path
	})

	if len(topFiles) > topN {
		topFiles = topFiles[:topN]
	}

	// Reverse for display (smallest first, displayed in reverse)
	for i, j := 0, len(topFiles)-1; i < j; i, j = i+1, j-1 {
		topFiles[i], topFiles[j] = topFiles[j], topFiles[i]
	}

	report.TopFiles = topFiles

	return report
}
