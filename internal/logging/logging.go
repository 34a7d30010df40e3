// Package logging owns the process-wide structured logger. A TUI owns stdout,
// so records go to a file when configured and are discarded otherwise.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const defaultLogFile = "overlaykit.log"

var (
	mu           sync.Mutex
	logger       = slog.New(slog.NewJSONHandler(io.Discard, nil))
	traceEnabled bool
	logFile      *os.File
)

// L returns the current logger.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetLogger replaces the logger. Tests use it to capture records.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// Configure directs JSON log records at level or above to path. An empty path
// falls back to the default file name. Directories are created when missing.
func Configure(path string, level slog.Level) error {
	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// Close releases the log file, reverting to a discarding logger.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// SetTraceEnabled toggles emission of interaction trace records.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether trace records are emitted.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace writes an info-level trace record when tracing is enabled.
func Trace(event string, attrs ...any) {
	mu.Lock()
	enabled, l := traceEnabled, logger
	mu.Unlock()
	if !enabled {
		return
	}
	l.Info("trace", append([]any{slog.String("event", event)}, attrs...)...)
}
