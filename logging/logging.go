package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options describes how the package logger is built
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console or json
	LogFile string // optional file, appended to
	Output  io.Writer
}

var (
	logger  = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logFile *os.File
	runID   string
	mu      sync.Mutex
	isSetup bool
)

// SetupLogger initializes the package logger. Calling it again replaces the
// previous configuration and closes any previously opened log file.
func SetupLogger(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "", "console", "text", "json":
	default:
		return fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	// Mirror records into the log file when one is configured
	var f *os.File
	if opts.LogFile != "" {
		var err error
		f, err = os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	// The previous file stays open until the replacement is ready
	if isSetup {
		closeLocked()
	}
	logFile = f
	runID = uuid.NewString()
	logger = slog.New(handler).With("run_id", runID)
	isSetup = true

	logger.Debug("framematch log started", "at", time.Now().Format(time.RFC3339))
	return nil
}

// CloseLogger closes the log file if one was opened
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logFile != nil {
		logger.Debug("framematch log closed", "at", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
	}
	isSetup = false
}

// ParseLevel maps a level name onto a slog level; unknown names mean info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger returns the current package logger
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// RunID returns the identifier attached to every record of the current run
func RunID() string {
	mu.Lock()
	defer mu.Unlock()
	return runID
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	Logger().Info(fmt.Sprintf(format, args...))
}

// DebugLog logs a message at debug level
func DebugLog(format string, args ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	Logger().Error(fmt.Sprintf(format, args...))
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, args...))
}

// LogImageProcessed logs the outcome of decoding one file
func LogImageProcessed(path string, success bool, errMsg string) {
	if success {
		Logger().Debug("image decoded", "path", path)
		return
	}
	Logger().Warn("image skipped", "path", path, "error", errMsg)
}
