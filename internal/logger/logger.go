// Package logger wraps log/slog behind the package-level helpers used across
// yumsync. Output goes to stdout and, when configured, to a rotating file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// OutputFormat selects the slog handler.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// FileOptions configures the rotating log file.
type FileOptions struct {
	Filename   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

var (
	// testOutput is used to capture log output during tests
	testOutput   io.Writer
	testOutputMu sync.Mutex
)

// Fields is a type alias for log fields to make the API cleaner
type Fields map[string]interface{}

var (
	logger       *slog.Logger
	currentLevel = new(slog.LevelVar)
	currentFmt   = FormatText
	fileSink     *lumberjack.Logger
)

// SetTestOutput sets the output writer for testing purposes
func SetTestOutput(w io.Writer) {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	testOutput = w
}

// UnsetTestOutput resets the test output to nil
func UnsetTestOutput() {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	testOutput = nil
}

func getOutput() io.Writer {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	var out io.Writer = os.Stdout
	if testOutput != nil {
		out = testOutput
	}
	if fileSink != nil {
		return io.MultiWriter(out, fileSink)
	}
	return out
}

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
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

// InitLogger initializes the global logger for CLI operations.
func InitLogger(logLevel string, format OutputFormat) {
	currentLevel.Set(ParseLevel(logLevel))
	currentFmt = format
	rebuild()
}

// SetOutputFormat switches the handler while keeping the level.
func SetOutputFormat(format OutputFormat) {
	currentFmt = format
	rebuild()
}

// EnableFile mirrors all log output into a rotating file. Passing an empty
// filename disables the file sink.
func EnableFile(opts FileOptions) error {
	if err := CloseFile(); err != nil {
		return err
	}
	if opts.Filename == "" {
		rebuild()
		return nil
	}
	fileSink = &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
	}
	rebuild()
	return nil
}

// CloseFile flushes and closes the rotating file, if any.
func CloseFile() error {
	if fileSink == nil {
		return nil
	}
	err := fileSink.Close()
	fileSink = nil
	rebuild()
	return err
}

func rebuild() {
	opts := &slog.HandlerOptions{Level: currentLevel}
	var handler slog.Handler
	if currentFmt == FormatJSON {
		handler = slog.NewJSONHandler(getOutput(), opts)
	} else {
		handler = slog.NewTextHandler(getOutput(), opts)
	}
	logger = slog.New(handler)
}

// GetLogger returns the configured logger instance.
func GetLogger() *slog.Logger {
	if logger == nil {
		// Initialize with default settings if not already initialized
		InitLogger("info", FormatText)
	}
	return logger
}

// Info logs an info message.
func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, mergeFields(fields...)...)
}

// Debug logs a debug message (only shown when debug level is enabled).
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, mergeFields(fields...)...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, mergeFields(fields...)...)
}

// Error logs an error message.
func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, mergeFields(fields...)...)
}

// Success logs a completed operation at info level, tagged status=success.
func Success(msg string, fields ...Fields) {
	GetLogger().Info(msg, append(mergeFields(fields...), "status", "success")...)
}

// mergeFields flattens field maps into slog key-value pairs. Keys repeated
// in later maps win.
func mergeFields(fields ...Fields) []interface{} {
	merged := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		attrs = append(attrs, k, merged[k])
	}
	return attrs
}
