// Package debug provides the process-wide structured logger for socchat.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	level   = new(slog.LevelVar)
	logger  = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logFile *os.File
	logPath string
)

// Logger returns the current logger.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetOutput sends log records to w at the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetLevel parses a level name such as "debug" or "warn".
func SetLevel(name string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return fmt.Errorf("parsing log level %q: %w", name, err)
	}
	level.Set(l)
	return nil
}

// Enable switches logging to the file at path at debug level.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	//nolint:gosec // G302: debug log is not sensitive.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	logFile = f
	logPath = path
	level.Set(slog.LevelDebug)
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	logger.Info("debug session started", "log_file", path, "pid", os.Getpid())

	return nil
}

// Disable closes the debug log file and returns to stderr.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	_ = logFile.Close() //nolint:errcheck // Nothing useful to do on close failure
	logFile = nil
	logPath = ""
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// IsEnabled returns whether file debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logFile != nil
}

// LogPath returns the path to the log file.
func LogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Log writes a formatted debug message.
func Log(format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// Event logs a component event.
func Event(component, eventType, details string) {
	Logger().Debug(eventType, "component", component, "details", details)
}

// Error logs an error with context.
func Error(component string, err error, context string) {
	Logger().Error(context, "component", component, "error", err)
}
