// Package logger writes brahma's diagnostics to stderr.
//
// Debug, info and section lines appear only in verbose mode (--verbose or
// BRAHMA_VERBOSE). Warnings and errors are always written. Answers and
// command output never go through this package.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level orders log lines by severity.
type Level int

const (
	// LevelDebug is step-by-step detail, shown only in verbose mode.
	LevelDebug Level = iota
	// LevelInfo is progress worth a line, shown only in verbose mode.
	LevelInfo
	// LevelWarn is a recoverable problem, such as a skipped file. Always shown.
	LevelWarn
	// LevelError is a failed operation. Always shown.
	LevelError
)

var levelTags = map[Level]string{
	LevelDebug: "[DEBUG]",
	LevelInfo:  "[INFO]",
	LevelWarn:  "[WARN]",
	LevelError: "[ERROR]",
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles verbose mode.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is on.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects log lines, e.g. into a buffer under test.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// enabled must be called with mu held.
func enabled(l Level) bool {
	return verbose || l >= LevelWarn
}

func emit(l Level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(l) {
		return
	}
	fmt.Fprintf(output, levelTags[l]+" "+format+"\n", args...)
}

// Debug logs a formatted [DEBUG] line in verbose mode.
func Debug(format string, args ...any) { emit(LevelDebug, format, args) }

// Info logs a formatted [INFO] line in verbose mode.
func Info(format string, args ...any) { emit(LevelInfo, format, args) }

// Warn logs a formatted [WARN] line, even when verbose mode is off.
func Warn(format string, args ...any) { emit(LevelWarn, format, args) }

// Error logs a formatted [ERROR] line, even when verbose mode is off.
func Error(format string, args ...any) { emit(LevelError, format, args) }

// Section prints a stage header in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timed starts a stopwatch for step. The returned func logs the elapsed
// time at debug level when called.
//
//	done := logger.Timed("retrieve")
//	defer done()
func Timed(step string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", step, time.Since(start).Round(time.Millisecond))
	}
}
