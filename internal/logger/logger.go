// Package logger provides verbose logging for the llmdump CLI.
// When verbose mode is enabled via the --verbose flag, messages are
// written to stderr through a zap console core so users can follow the
// crawl, classification and export steps. When verbose is off every call
// is a no-op.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  = zapcore.Lock(os.Stderr)
	base    = zap.NewNop()
	sugar   = base.Sugar()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = zapcore.Lock(zapcore.AddSync(w))
	rebuild()
}

// L returns the underlying zap logger for callers that log structured fields.
// It is a no-op logger unless verbose mode is enabled.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	current().Debugf(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	current().Infof(format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	current().Warnf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = L().Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// rebuild swaps the zap core for the current settings (caller must hold lock).
func rebuild() {
	if !verbose {
		base = zap.NewNop()
		sugar = base.Sugar()
		return
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		output,
		zapcore.DebugLevel,
	)
	base = zap.New(core)
	sugar = base.Sugar()
}

// encoderConfig renders entries as "[LEVEL] message".
func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      bracketLevelEncoder,
		ConsoleSeparator: " ",
		LineEnding:       zapcore.DefaultLineEnding,
	}
}

func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}
