// Package output handles console output for ysconv, including verbose mode
// and an in-place progress line.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Config holds output configuration.
type Config struct {
	Verbose   bool      // Enable verbose output
	Writer    io.Writer // Output destination (default: os.Stdout)
	ErrWriter io.Writer // Error output destination (default: os.Stderr)
	IsTTY     bool      // Whether output is a terminal
}

// DefaultConfig returns a Config with TTY detection.
func DefaultConfig(verbose bool) Config {
	return Config{
		Verbose:   verbose,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Output writes formatted messages, keeping them from colliding with the
// progress line.
type Output struct {
	config Config

	mu          sync.Mutex
	progressOn  bool
	progressMax int
}

// New creates a new Output instance with the given configuration.
func New(config Config) *Output {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.ErrWriter == nil {
		config.ErrWriter = os.Stderr
	}
	return &Output{config: config}
}

// Info prints an informational message (always shown).
func (o *Output) Info(format string, args ...interface{}) {
	o.print(o.config.Writer, format, args...)
}

// Verbose prints a message only when verbose mode is enabled.
func (o *Output) Verbose(format string, args ...interface{}) {
	if !o.config.Verbose {
		return
	}
	o.print(o.config.Writer, format, args...)
}

// Error prints an error message to stderr.
func (o *Output) Error(format string, args ...interface{}) {
	o.print(o.config.ErrWriter, format, args...)
}

// IsVerbose returns whether verbose mode is enabled.
func (o *Output) IsVerbose() bool {
	return o.config.Verbose
}

func (o *Output) print(w io.Writer, format string, args ...interface{}) {
	o.mu.Lock()
	o.clearProgressLocked()
	o.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(w, msg)
}

// progressEnabled reports whether the progress line should be drawn at all.
// It is suppressed off-terminal and in verbose mode, where every file is
// already reported as its own line.
func (o *Output) progressEnabled() bool {
	return o.config.IsTTY && !o.config.Verbose
}

// StartProgress begins a progress line over total items.
func (o *Output) StartProgress(total int) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.progressOn = true
	o.progressMax = total
}

// UpdateProgress redraws the progress line in place.
func (o *Output) UpdateProgress(current int, message string) {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressOn {
		return
	}
	if message == "" {
		message = "Processing file"
	}
	fmt.Fprintf(o.config.Writer, "\r%s %d/%d...", message, current, o.progressMax)
}

// EndProgress clears the progress line.
func (o *Output) EndProgress() {
	if !o.progressEnabled() {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.progressOn {
		return
	}
	o.progressOn = false
	fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
}

func (o *Output) clearProgressLocked() {
	if o.progressOn && o.config.IsTTY {
		fmt.Fprint(o.config.Writer, "\r"+strings.Repeat(" ", 60)+"\r")
	}
}
