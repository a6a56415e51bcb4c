// Package terminal provides the status output hands writes to stderr:
// styled log lines, a spinner, an interactive comment picker, and TTY
// detection.
package terminal

import (
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// ANSI escape codes used by the logger and spinner.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

var colorsOn atomic.Bool

func init() {
	colorsOn.Store(true)
}

// EnableColors turns on ANSI output.
func EnableColors() { colorsOn.Store(true) }

// DisableColors turns off ANSI output, for tests and piped stderr.
func DisableColors() { colorsOn.Store(false) }

// ColorsEnabled reports whether Color returns escape codes.
func ColorsEnabled() bool { return colorsOn.Load() }

// ConfigureColors enables colors only when stderr is a terminal and NO_COLOR
// (https://no-color.org) is unset.
func ConfigureColors() {
	_, noColor := os.LookupEnv("NO_COLOR")
	colorsOn.Store(IsStderrTTY() && !noColor)
}

// Color returns code, or "" while colors are off.
func Color(code string) string {
	if colorsOn.Load() {
		return code
	}
	return ""
}

// IsStdinTTY reports whether stdin is a terminal. The comment picker needs one.
func IsStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStderrTTY reports whether stderr, where status lines go, is a terminal.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Width returns the width of the terminal on stderr, or 80 when unknown.
func Width() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
