package dirsize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// DefaultTopN is the number of top files tracked when Options.TopN is unset.
const DefaultTopN = 20

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid options")

// SortKey selects the order of the scanned entries.
type SortKey string

const (
	// SortNone applies no ordering beyond the stable path order.
	SortNone SortKey = ""
	// SortSize orders entries largest first.
	SortSize SortKey = "size"
	// SortName orders entries by path, ascending.
	SortName SortKey = "name"
)

// OversizePolicy decides what happens to files larger than Options.MaxFileSize.
type OversizePolicy string

const (
	// OversizeDrop removes oversized files from the candidate list.
	OversizeDrop OversizePolicy = "drop"
	// OversizeClamp keeps oversized files but counts at most MaxFileSize bytes for each.
	OversizeClamp OversizePolicy = "clamp"
)

// Options configures a directory size calculation.
type Options struct {
	// Path is the directory to analyze.
	Path string
	// FileTypes are extensions to include (empty = all). A '!' prefix excludes.
	FileTypes []string
	// Exclude holds extensions or path-segment names to drop.
	Exclude []string
	// IncludeHidden includes dot-prefixed files and directories.
	IncludeHidden bool
	// MaxFileSize is the per-file size limit in bytes (0 = none).
	MaxFileSize int64
	// OversizePolicy selects how MaxFileSize is applied.
	OversizePolicy OversizePolicy
	// MaxTotalSize caps the cumulative adjusted size in bytes (0 = none).
	MaxTotalSize int64
	// StartDate drops files modified before it (zero = unbounded).
	StartDate time.Time
	// EndDate drops files modified after it (zero = unbounded).
	EndDate time.Time
	// SortBy orders the scanned entries.
	SortBy SortKey
	// TopLevelOnly restricts the scan to immediate children of Path.
	TopLevelOnly bool
	// SniffTypes derives the extension of extensionless files from their content.
	SniffTypes bool
	// Workers is the number of accumulator goroutines (<1 = 1).
	Workers int
	// Ratios overrides the compression estimates (nil = DefaultRatios).
	Ratios Ratios
	// TopN is the number of top results to track.
	TopN int
	// DirsMode indicates whether to aggregate by directory instead of files.
	DirsMode bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// StateHook, if set, observes every state transition of a run.
	StateHook func(State)
	// Debug indicates whether debug output is enabled.
	Debug bool
}

// Validate reports the first problem with the options, wrapped in ErrInvalidOptions.
func (o Options) Validate() error {
	switch o.SortBy {
	case SortNone, SortSize, SortName:
	default:
		return fmt.Errorf("%w: unknown sort key %q", ErrInvalidOptions, o.SortBy)
	}

	switch o.OversizePolicy {
	case "", OversizeDrop, OversizeClamp:
	default:
		return fmt.Errorf("%w: unknown oversize policy %q", ErrInvalidOptions, o.OversizePolicy)
	}

	if o.MaxFileSize < 0 {
		return fmt.Errorf("%w: max file size cannot be negative", ErrInvalidOptions)
	}

	if o.MaxTotalSize < 0 {
		return fmt.Errorf("%w: max total size cannot be negative", ErrInvalidOptions)
	}

	if !o.StartDate.IsZero() && !o.EndDate.IsZero() && o.EndDate.Before(o.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidOptions, o.EndDate.Format(time.DateOnly), o.StartDate.Format(time.DateOnly))
	}

	if err := o.Ratios.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	return nil
}

// policy returns the effective oversize policy.
func (o Options) policy() OversizePolicy {
	if o.OversizePolicy == "" {
		return OversizeDrop
	}

	return o.OversizePolicy
}

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortNone, SortSize, SortName:
		return key, nil
	case "none":
		return SortNone, nil
	default:
		return SortNone, fmt.Errorf("%w: unknown sort key %q: must be one of size, name, none", ErrInvalidOptions, s)
	}
}

// ParseOversizePolicy converts user input into an OversizePolicy.
func ParseOversizePolicy(s string) (OversizePolicy, error) {
	switch p := OversizePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", OversizeDrop:
		return OversizeDrop, nil
	case OversizeClamp:
		return OversizeClamp, nil
	default:
		return OversizeDrop, fmt.Errorf("%w: unknown oversize policy %q: must be drop or clamp", ErrInvalidOptions, s)
	}
}
