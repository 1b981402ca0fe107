package dirsize

import (
	"fmt"
	"io"
	"os"
)

// logger provides conditional debug output.
type logger struct {
	enabled bool
	out     io.Writer
}

// newLogger returns a logger writing to stderr when enabled.
func newLogger(enabled bool) logger {
	return logger{enabled: enabled, out: os.Stderr}
}

// printf prints debug output if logging is enabled.
func (l logger) printf(format string, args ...any) {
	if !l.enabled || l.out == nil {
		return
	}

	fmt.Fprintf(l.out, "[debug]: "+format, args...)
}
