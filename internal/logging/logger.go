package logging

import (
	"io"
	"log/slog"
)

// NewLogger creates the root JSON logger. Records are annotated with the active trace and
// span ids when logged with the *Context methods.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTracingLogHandler(base))
}
