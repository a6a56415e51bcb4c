package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 200 * time.Millisecond

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

var clearLine = "\r" + strings.Repeat(" ", 100) + "\r"

// StatusSpinner shows one animated status line at the bottom of the output,
// such as "Thinking..." while an agent runs. The label can change while it
// spins, and a Logger attached to it clears the line before printing.
type StatusSpinner struct {
	mu     sync.Mutex
	out    io.Writer
	isTTY  bool
	label  string
	active bool
	drawn  bool
	frame  int
}

// NewStatusSpinner creates a hidden spinner drawing to stderr.
func NewStatusSpinner() *StatusSpinner {
	return &StatusSpinner{
		out:   os.Stderr,
		isTTY: IsStderrTTY(),
	}
}

// Run animates the spinner until the context is cancelled.
// On a non-TTY it only waits; labels are never drawn.
func (s *StatusSpinner) Run(ctx context.Context) {
	if !s.isTTY {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Hide()
			return
		case <-ticker.C:
			s.mu.Lock()
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

// Show makes the spinner visible with label.
func (s *StatusSpinner) Show(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.active = true
}

// Hide stops drawing the spinner and clears its line.
func (s *StatusSpinner) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.clearLocked()
}

// Label returns the current label.
func (s *StatusSpinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// Active reports whether the spinner is shown.
func (s *StatusSpinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Suspend clears the spinner line, runs fn, and lets the next tick redraw.
func (s *StatusSpinner) Suspend(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	fn()
}

func (s *StatusSpinner) drawLocked() {
	if !s.active || !s.isTTY {
		return
	}
	frame := string(spinnerFrames[s.frame%len(spinnerFrames)])
	tag := fmt.Sprintf("%s[%s%shands%s%s]%s",
		Color(Dim), Color(Reset), Color(Cyan), Color(Reset), Color(Dim), Color(Reset))
	fmt.Fprintf(s.out, "\r%s %s%s%s %s          ", tag, Color(Cyan), frame, Color(Reset), s.label)
	s.frame++
	s.drawn = true
}

func (s *StatusSpinner) clearLocked() {
	if s.drawn {
		fmt.Fprint(s.out, clearLine)
		s.drawn = false
	}
}
