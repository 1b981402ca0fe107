package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dirsize/internal/dirsize"
	"github.com/idelchi/dirsize/internal/export"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && isatty.IsTerminal(file.Fd())
}

func logic(ctx context.Context, stdout, stderr io.Writer, s settings) error {
	enableProgress := s.output == "table" &&
		!s.options.Debug &&
		isTerminal(stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Counting… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	calculator := dirsize.NewCalculator(s.cache)

	report, err := calculator.Run(ctx, s.options, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	if s.outputFile != "" {
		written, err := export.Write(s.outputFile, export.Rows(report.Entries, s.unit))
		if err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}

		if !written && s.options.Debug {
			fmt.Fprintf(stderr, "[debug]: unsupported export extension, nothing written to %s\n", s.outputFile)
		}
	}

	switch s.output {
	case "json":
		return PrintJSON(report, stdout)
	case "size":
		return PrintSize(report, stdout, s.unit)
	default:
		return PrintTable(report, stdout, s.unit)
	}
}
