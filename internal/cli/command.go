package cli

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dirsize/internal/config"
	"github.com/idelchi/dirsize/internal/dirsize"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// allowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json", "size"}

// settings is the fully resolved configuration of one invocation.
type settings struct {
	options    dirsize.Options
	output     string
	outputFile string
	unit       dirsize.Unit
	cache      dirsize.CacheOptions
}

// flagValues holds the raw flag values before they are merged with the config file.
type flagValues struct {
	configPath   string
	fileTypes    []string
	exclude      []string
	hidden       bool
	maxFileSize  string
	oversize     string
	maxTotalSize string
	since        string
	until        string
	noSubdirs    bool
	sortBy       string
	workers      int
	outputFile   string
	output       string
	unit         string
	top          int
	dirs         bool
	sniff        bool
	debug        bool
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var values flagValues

	cmd := &cobra.Command{
		Use:   "dirsize [flags] [path]",
		Short: "Report aggregate disk usage for a directory tree",
		Long: heredoc.Doc(`
			dirsize walks a directory tree, filters files and reports their total size.

			Besides the raw total it estimates the compressed size of the selection
			using a per-extension compression ratio, and can stop early once that
			estimate reaches --max-total-size. The cap is best-effort: with several
			workers, which files make it in before the stop depends on scheduling.

			Settings are read from a YAML file (--config, default .dirsize.yaml)
			and overridden by flags given on the command line.

			Per-file results can be exported with --output-file; the format follows
			the extension (.csv or .xlsx). Other extensions write nothing.
		`),
		Example: heredoc.Doc(`
			dirsize
			dirsize -x .go,.md ~/src
			dirsize --max-file-size 10MB --oversize clamp -f sizes.xlsx /var/log
			dirsize --since 2024-01-01 --sort size -o json
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolve(cmd.Flags(), values, args)
			if err != nil {
				return err
			}

			return logic(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), resolved)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.StringVarP(&values.configPath, "config", "c", config.DefaultPath, "YAML config file")
	flags.StringSliceVarP(
		&values.fileTypes,
		"ext",
		"x",
		[]string{},
		"File extensions to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log)",
	)
	flags.StringSliceVarP(&values.exclude, "exclude", "e", []string{}, "Extensions or path segments to exclude")
	flags.BoolVar(&values.hidden, "hidden", false, "Include hidden files and directories")
	flags.StringVar(&values.maxFileSize, "max-file-size", "", "Per-file size limit (e.g., 10MB)")
	flags.StringVar(&values.oversize, "oversize", "drop", "What to do with files above --max-file-size: drop or clamp")
	flags.StringVar(&values.maxTotalSize, "max-total-size", "", "Stop once the estimated compressed total would exceed this")
	flags.StringVar(&values.since, "since", "", "Only files modified on or after this date (YYYY-MM-DD or RFC 3339)")
	flags.StringVar(&values.until, "until", "", "Only files modified on or before this date (YYYY-MM-DD or RFC 3339)")
	flags.BoolVar(&values.noSubdirs, "no-subdirs", false, "Only analyze the immediate children of path")
	flags.StringVar(&values.sortBy, "sort", "none", "Order of exported files: size, name or none")
	flags.IntVarP(&values.workers, "workers", "w", runtime.NumCPU(), "Number of accumulator workers")
	flags.StringVarP(&values.outputFile, "output-file", "f", "", "Export per-file results (.csv or .xlsx)")
	flags.StringVarP(&values.output, "output", "o", "table", "Output format: table, json or size")
	flags.StringVarP(&values.unit, "unit", "u", "B", "Smallest unit used in sizes: B, K, M, G, T")
	flags.IntVarP(&values.top, "top", "t", 10, "Number of top files to display")
	flags.BoolVar(&values.dirs, "dirs", false, "Aggregate top results by directory instead of individual files")
	flags.BoolVar(&values.sniff, "sniff", false, "Detect the extension of extensionless files from their content")
	flags.BoolVar(&values.debug, "debug", false, "Enable debug output")

	return cmd
}

// resolve merges defaults, the config file and explicitly set flags.
//
//nolint:gocognit,gocyclo,cyclop,funlen // One branch per setting.
func resolve(flags *pflag.FlagSet, values flagValues, args []string) (settings, error) {
	cfg, err := config.LoadConfig(values.configPath)
	if err != nil {
		return settings{}, fmt.Errorf("loading config: %w", err)
	}

	changed := flags.Changed

	if len(args) > 0 {
		cfg.Path = args[0]
	}

	if changed("ext") {
		cfg.FileTypes = values.fileTypes
	}

	if changed("exclude") {
		cfg.Exclude = values.exclude
	}

	if changed("hidden") {
		cfg.IncludeHidden = values.hidden
	}

	if changed("max-file-size") {
		cfg.MaxFileSize = values.maxFileSize
	}

	if changed("oversize") {
		cfg.OversizePolicy = values.oversize
	}

	if changed("max-total-size") {
		cfg.MaxTotalSize = values.maxTotalSize
	}

	if changed("since") {
		cfg.StartDate = values.since
	}

	if changed("until") {
		cfg.EndDate = values.until
	}

	if changed("no-subdirs") {
		include := !values.noSubdirs
		cfg.IncludeSubdirs = &include
	}

	if changed("sort") {
		cfg.SortBy = values.sortBy
	}

	if changed("workers") || cfg.Workers == 0 {
		cfg.Workers = values.workers
	}

	if changed("output-file") {
		cfg.OutputFile = values.outputFile
	}

	if changed("output") {
		cfg.Output = values.output
	}

	if changed("unit") {
		cfg.Unit = values.unit
	}

	if changed("top") {
		cfg.Top = values.top
	}

	if changed("sniff") {
		cfg.Sniff = values.sniff
	}

	return fromConfig(cfg, values)
}

// fromConfig validates cfg and converts it into settings.
//
//nolint:funlen // Straight-line conversion.
func fromConfig(cfg *config.Config, values flagValues) (settings, error) {
	cfg.Output = strings.ToLower(cfg.Output)
	if !slices.Contains(allowedOutputs, cfg.Output) {
		return settings{}, fmt.Errorf("invalid output format %q: must be one of %v", cfg.Output, allowedOutputs)
	}

	if cfg.Workers < 1 {
		return settings{}, errors.New("workers must be at least 1")
	}

	if cfg.Top < 0 {
		return settings{}, errors.New("top cannot be negative")
	}

	maxFileSize, err := parseSize(cfg.MaxFileSize)
	if err != nil {
		return settings{}, fmt.Errorf("invalid max-file-size: %w", err)
	}

	maxTotalSize, err := parseSize(cfg.MaxTotalSize)
	if err != nil {
		return settings{}, fmt.Errorf("invalid max-total-size: %w", err)
	}

	policy, err := dirsize.ParseOversizePolicy(cfg.OversizePolicy)
	if err != nil {
		return settings{}, err
	}

	sortBy, err := dirsize.ParseSortKey(cfg.SortBy)
	if err != nil {
		return settings{}, err
	}

	start, err := parseDate(cfg.StartDate, false)
	if err != nil {
		return settings{}, fmt.Errorf("invalid start date: %w", err)
	}

	end, err := parseDate(cfg.EndDate, true)
	if err != nil {
		return settings{}, fmt.Errorf("invalid end date: %w", err)
	}

	unit, err := dirsize.ParseUnit(cfg.Unit)
	if err != nil {
		return settings{}, err
	}

	ratios := dirsize.DefaultRatios()
	if len(cfg.Ratios) > 0 {
		ratios = ratios.Merge(cfg.Ratios)
	}

	return settings{
		options: dirsize.Options{
			Path:           cfg.Path,
			FileTypes:      cfg.FileTypes,
			Exclude:        cfg.Exclude,
			IncludeHidden:  cfg.IncludeHidden,
			MaxFileSize:    maxFileSize,
			OversizePolicy: policy,
			MaxTotalSize:   maxTotalSize,
			StartDate:      start,
			EndDate:        end,
			SortBy:         sortBy,
			TopLevelOnly:   !cfg.IncludesSubdirs(),
			SniffTypes:     cfg.Sniff,
			Workers:        cfg.Workers,
			Ratios:         ratios,
			TopN:           cfg.Top,
			DirsMode:       values.dirs,
			Debug:          values.debug,
		},
		output:     cfg.Output,
		outputFile: cfg.OutputFile,
		unit:       unit,
		cache:      dirsize.CacheOptions{Size: cfg.Cache.Size, TTL: cfg.Cache.TTL},
	}, nil
}

// parseSize parses a human-readable size; the empty string means no limit.
func parseSize(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}

	return int64(size), nil //nolint:gosec // Size conversion from humanize is safe
}

// parseDate parses YYYY-MM-DD (local time) or RFC 3339. A date-only end bound
// covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}

		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC 3339", s)
	}

	return t, nil
}
