// Package log provides a compatibility layer for go-ethereum style logging
// that redirects to luxfi/log
package log

import (
	"io"
	"log/slog"
	"os"

	luxlog "github.com/luxfi/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Re-export types from luxfi/log
type (
	Logger = luxlog.Logger
)

// NewLogger returns a logger with the specified handler set
func NewLogger(h slog.Handler) Logger {
	// For compatibility, we ignore the handler and return a luxfi logger
	return luxlog.Root()
}

// FromLegacyLevel converts from old Geth verbosity level constants
func FromLegacyLevel(lvl int) slog.Level {
	return luxlog.FromLegacyLevel(lvl)
}

// SetDefault sets the default logger
func SetDefault(l Logger) {
	luxlog.SetDefault(l)
}

// FileHandler returns a handler writing to path, size-rotated and
// compressed by lumberjack so a long-running node never grows an
// unbounded application log (this is the ambient application log;
// the fragment core's own hourly-rotated persistent log is unrelated
// and never goes through this handler).
func FileHandler(path string, fmtr Formatter) (slog.Handler, error) {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 10,
		MaxAge:     28, // days
		Compress:   true,
	}
	return slog.NewTextHandler(w, nil), nil
}

// NewTerminalHandler returns a handler writing to w, auto-detecting
// whether w is a real terminal (via go-isatty) and wrapping it with
// go-colorable so ANSI colors render correctly on Windows consoles too.
// useColor forces the decision instead of auto-detecting when true.
func NewTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	out := w
	if f, ok := w.(*os.File); ok && (useColor || isatty.IsTerminal(f.Fd())) {
		out = colorable.NewColorable(f)
	}
	return slog.NewTextHandler(out, nil)
}

// Formatter interface for compatibility
type Formatter interface{}

// TerminalFormat returns a terminal formatter
func TerminalFormat(useColor bool) Formatter {
	return nil
}
