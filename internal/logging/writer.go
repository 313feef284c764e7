package logging

import (
	"log/slog"
	"strings"
)

// Writer is an io.Writer that forwards subprocess output to slog line by line.
// The migration tool and hook steps write their stdout/stderr through it so
// their output lands in the same stream as entryctl's own logs.
type Writer struct {
	logger *slog.Logger
	source string
}

// NewWriter constructs a Writer bound to the provided logger. The source label
// identifies which subprocess produced the output.
func NewWriter(logger *slog.Logger, source string) *Writer {
	return &Writer{logger: logger, source: source}
}

// Write logs the given bytes at info level, one log record per line.
func (w *Writer) Write(p []byte) (int, error) {
	if w.logger != nil {
		for _, line := range strings.Split(string(p), "\n") {
			if line = strings.TrimRight(line, "\r"); line != "" {
				w.logger.Info(line, "source", w.source)
			}
		}
	}
	return len(p), nil
}
