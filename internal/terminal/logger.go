package terminal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Style represents a log message style.
type Style string

const (
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
	StyleWarning Style = "warning"
	StyleError   Style = "error"
	StyleDim     Style = "dim"
	StylePhase   Style = "phase"
)

// styleSymbols prefix messages so styles stay distinguishable without color.
var styleSymbols = map[Style]string{
	StyleInfo:    "I",
	StyleSuccess: "✓",
	StyleWarning: "W",
	StyleError:   "!",
	StyleDim:     "·",
	StylePhase:   "▸",
}

// Logger provides styled logging to stderr. A Logger is safe for concurrent
// use; lines from different goroutines never interleave.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	isTTY   bool
	verbose bool
	spinner *StatusSpinner
}

// NewLogger creates a new logger writing to stderr.
func NewLogger() *Logger {
	return &Logger{
		out:   os.Stderr,
		isTTY: IsStderrTTY(),
	}
}

// NewLoggerTo creates a logger writing plain lines to w, for output that is
// captured rather than shown on a terminal.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{out: w}
}

// SetVerbose enables Debug output.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// AttachSpinner makes the logger clear s before each line; s redraws below it.
func (l *Logger) AttachSpinner(s *StatusSpinner) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spinner = s
}

// Log prints a styled log message to stderr.
func (l *Logger) Log(msg string, style Style) {
	styleColor := Cyan
	switch style {
	case StyleInfo:
		styleColor = Cyan
	case StyleSuccess:
		styleColor = Green
	case StyleWarning:
		styleColor = Yellow
	case StyleError:
		styleColor = Red
	case StyleDim:
		styleColor = Dim
	case StylePhase:
		styleColor = Magenta + Bold
	}

	tag := fmt.Sprintf("%s[%s%shands%s%s]%s",
		Color(Dim), Color(Reset), Color(styleColor), Color(Reset), Color(Dim), Color(Reset))
	line := fmt.Sprintf("%s %s%s%s %s\n", tag, Color(styleColor), styleSymbols[style], Color(Reset), msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	write := func() {
		if l.isTTY {
			fmt.Fprint(l.out, clearLine)
		}
		fmt.Fprint(l.out, line)
	}
	if l.spinner != nil {
		l.spinner.Suspend(write)
		return
	}
	write()
}

// Logf prints a formatted styled log message to stderr.
func (l *Logger) Logf(style Style, format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...), style)
}

// Debugf prints a dim message when verbose output is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	l.mu.Lock()
	verbose := l.verbose
	l.mu.Unlock()
	if verbose {
		l.Log(fmt.Sprintf(format, args...), StyleDim)
	}
}

// Log prints a styled log message to stderr (package-level function).
func Log(msg string, style Style) {
	logger := NewLogger()
	logger.Log(msg, style)
}

// Logf prints a formatted styled log message to stderr (package-level function).
func Logf(style Style, format string, args ...any) {
	Log(fmt.Sprintf(format, args...), style)
}
