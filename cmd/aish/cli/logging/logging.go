// Package logging provides structured logging for aish built on log/slog.
//
// The wrapper runs with the controlling terminal in raw mode, so log output
// must never be written to stdout/stderr mid-session. Init routes all
// records to a file under the user cache directory; before Init (and after
// a failed Init) records at WARN and above fall back to stderr, which is
// only acceptable outside raw mode.
//
// Component context flows through context.Context: use WithComponent to tag
// a subsystem and the package-level Debug/Info/Warn/Error helpers to emit.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type componentKey struct{}

var (
	mu      sync.Mutex
	logger  *slog.Logger
	logFile *os.File
	level   = new(slog.LevelVar)
)

// WithComponent returns a context carrying the component name. All records
// emitted with that context include a "component" attribute.
func WithComponent(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, componentKey{}, name)
}

// SetLevel adjusts the minimum level for all subsequent records.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// ParseLevel maps a settings log-level string to a slog.Level.
// Unknown strings default to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init opens the log file and installs the file-backed logger. sessionID is
// attached to every record so concurrent wrapper sessions can be told apart.
// Safe to call once per process; the returned error leaves the stderr
// fallback in place.
func Init(ctx context.Context, sessionID string) error {
	dir, err := logDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, "aish.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	logFile = f
	h := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	l := slog.New(h)
	if sessionID != "" {
		l = l.With(slog.String("session_id", sessionID))
	}
	logger = l
	return nil
}

// Close flushes and closes the log file. Safe to call without Init.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logger = nil
}

func logDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	return filepath.Join(base, "aish", "logs"), nil
}

func log(ctx context.Context, l slog.Level, msg string, attrs ...any) {
	mu.Lock()
	lg := logger
	mu.Unlock()

	if c, ok := ctx.Value(componentKey{}).(string); ok {
		attrs = append(attrs, slog.String("component", c))
	}
	if lg == nil {
		// Fallback before Init: stderr, warnings and up only.
		if l >= slog.LevelWarn {
			slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).Log(ctx, l, msg, attrs...)
		}
		return
	}
	lg.Log(ctx, l, msg, attrs...)
}

// Debug logs at DEBUG level.
func Debug(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelDebug, msg, attrs...) }

// Info logs at INFO level.
func Info(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelInfo, msg, attrs...) }

// Warn logs at WARN level.
func Warn(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelWarn, msg, attrs...) }

// Error logs at ERROR level.
func Error(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelError, msg, attrs...) }

// LogDuration logs msg with a duration_ms attribute measured from start.
func LogDuration(ctx context.Context, l slog.Level, msg string, start time.Time, attrs ...any) {
	attrs = append(attrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	log(ctx, l, msg, attrs...)
}
