package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/idelchi/dirsize/internal/dirsize"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the report in JSON format.
func PrintJSON(report *dirsize.Report, writer io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintSize outputs only the formatted total size.
func PrintSize(report *dirsize.Report, writer io.Writer, unit dirsize.Unit) error {
	_, err := fmt.Fprintln(writer, report.Size(unit))

	return err
}

// percent returns part as a percentage of total.
func percent(part, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return 100.0 * float64(part) / float64(total)
}

// PrintTable outputs the report in human-readable table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(report *dirsize.Report, writer io.Writer, unit dirsize.Unit) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)
	p := message.NewPrinter(language.English)

	if !report.DirectoryMode {
		// Extension statistics
		fmt.Fprintln(w, "\nTop extensions:\t\t")
		extList := make([]string, 0, len(report.ExtStats))
		for ext := range report.ExtStats {
			extList = append(extList, ext)
		}
		sort.Slice(extList, func(i, j int) bool {
			si, sj := report.ExtStats[extList[i]].Size, report.ExtStats[extList[j]].Size
			if si != sj {
				return si < sj
			}

			return extList[i] > extList[j]
		})

		startIdx := 0
		if len(extList) > report.TopN {
			startIdx = len(extList) - report.TopN
		}

		displayList := extList[startIdx:]
		for i, ext := range displayList {
			extStat := report.ExtStats[ext]
			if ext == "" {
				ext = "\"\""
			}
			fmt.Fprintf(w, "  %d) %s:\t%d files, %s (%.1f%%), ~%s compressed\n",
				len(displayList)-i, ext, extStat.Count,
				dirsize.FormatSize(extStat.Size, unit), percent(extStat.Size, report.TotalBytes),
				dirsize.FormatSize(extStat.AdjustedSize, unit))
		}
	}

	// Top files/directories
	if report.DirectoryMode {
		fmt.Fprintln(w, "\nTop directories:\t\t")
	} else {
		fmt.Fprintln(w, "\nTop files:\t\t")
	}

	for i := 0; i < len(report.TopFiles); i++ {
		f := report.TopFiles[i]
		fmt.Fprintf(w, "  %d) '%s'\t%s (%.1f%%)\n",
			len(report.TopFiles)-i, f.Path, dirsize.FormatSize(f.Size, unit), percent(f.Size, report.TotalBytes))
	}

	// Stats summary
	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Root:\t%s\n", report.Root)
	if report.DirectoryMode {
		fmt.Fprintf(w, "Total directories:\t%d\n", report.FileCount)
	} else {
		fmt.Fprintf(w, "Total files:\t%d of %d\n", report.FileCount, report.ScannedCount)
	}
	fmt.Fprintf(w, "Total size:\t%s (%s bytes)\n", report.Size(unit), p.Sprintf("%d", report.TotalBytes))
	fmt.Fprintf(w, "Estimated compressed:\t%s (%s bytes)\n",
		dirsize.FormatSize(report.AdjustedBytes, unit), p.Sprintf("%d", report.AdjustedBytes))
	if report.Filters.MaxTotalSize > 0 {
		fmt.Fprintf(w, "Size cap:\t%s (reached: %t)\n",
			dirsize.FormatSize(report.Filters.MaxTotalSize, unit), report.CapBreached)
	}
	if report.ErrorCount > 0 {
		fmt.Fprintf(w, "Errors:\t%d\n", report.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v (%d workers)\n", report.Elapsed, report.Workers)

	return w.Flush()
}
