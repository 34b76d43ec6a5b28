// Package logger provides verbose diagnostics for the ragdex CLI.
// Nothing is written unless verbose mode is switched on via the
// --verbose flag; output goes to stderr so it never mixes with
// command results on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose switches verbose diagnostics on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose diagnostics are enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects diagnostics away from stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug logs fine-grained pipeline steps.
func Debug(format string, args ...any) {
	logf("[DEBUG] ", format, args...)
}

// Info logs high-level progress.
func Info(format string, args ...any) {
	logf("[INFO] ", format, args...)
}

// Warn logs recoverable problems.
func Warn(format string, args ...any) {
	logf("[WARN] ", format, args...)
}

// Section marks the start of a pipeline phase.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// logf holds the lock across the write so that goroutines logging at
// the same time, the watcher and the crawler among them, never
// interleave within a line.
func logf(prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
