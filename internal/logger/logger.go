// Package logger provides logging for the idledger CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace each lifecycle operation.
// Errors are always printed, verbose or not.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the severity tag printed before a message.
type Level string

// Levels in increasing severity.
const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(LevelDebug, "", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(LevelInfo, "", format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	logf(LevelWarn, "", format, args...)
}

// Error prints a message regardless of verbose mode. It is reserved for
// conditions an operator must act on, such as a record written without
// its ledger event.
func Error(format string, args ...any) {
	logf(LevelError, "", format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Op scopes messages to one lifecycle operation on one identifier.
type Op struct {
	prefix string
}

// Operation returns a logger whose messages are prefixed with "op id: ".
func Operation(name, id string) Op {
	if id == "" {
		return Op{prefix: name + ": "}
	}
	return Op{prefix: name + " " + id + ": "}
}

// Debug prints a scoped message if verbose mode is enabled.
func (o Op) Debug(format string, args ...any) {
	logf(LevelDebug, o.prefix, format, args...)
}

// Warn prints a scoped warning if verbose mode is enabled.
func (o Op) Warn(format string, args ...any) {
	logf(LevelWarn, o.prefix, format, args...)
}

// Error prints a scoped message regardless of verbose mode.
func (o Op) Error(format string, args ...any) {
	logf(LevelError, o.prefix, format, args...)
}

func logf(level Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose && level != LevelError {
		return
	}
	fmt.Fprintf(output, "["+string(level)+"] "+prefix+format+"\n", args...)
}
