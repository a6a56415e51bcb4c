package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestStatusSpinner_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	s := &StatusSpinner{out: &buf, isTTY: false}
	s.Show("Thinking...")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(3 * spinnerInterval)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not exit")
	}

	if buf.Len() != 0 {
		t.Errorf("expected no output on a non-TTY, got %q", buf.String())
	}
}

func TestStatusSpinner_ShowHide(t *testing.T) {
	var buf bytes.Buffer
	s := &StatusSpinner{out: &buf, isTTY: true}

	if s.Active() {
		t.Error("new spinner should be hidden")
	}

	s.Show("Thinking...")
	if !s.Active() || s.Label() != "Thinking..." {
		t.Errorf("expected active spinner with label, got active=%v label=%q", s.Active(), s.Label())
	}

	s.Show("Fixing errors...")
	if s.Label() != "Fixing errors..." {
		t.Errorf("label = %q, want %q", s.Label(), "Fixing errors...")
	}

	s.mu.Lock()
	s.drawLocked()
	s.mu.Unlock()
	if !strings.Contains(buf.String(), "Fixing errors...") {
		t.Errorf("expected label to be drawn, got %q", buf.String())
	}

	s.Hide()
	if s.Active() {
		t.Error("expected spinner to be hidden")
	}
	if !strings.HasSuffix(buf.String(), clearLine) {
		t.Error("Hide should clear the drawn line")
	}
}

func TestStatusSpinner_HiddenDoesNotDraw(t *testing.T) {
	var buf bytes.Buffer
	s := &StatusSpinner{out: &buf, isTTY: true}

	s.mu.Lock()
	s.drawLocked()
	s.mu.Unlock()
	s.Hide()

	if buf.Len() != 0 {
		t.Errorf("expected no output for hidden spinner, got %q", buf.String())
	}
}

func TestStatusSpinner_Suspend(t *testing.T) {
	var buf bytes.Buffer
	s := &StatusSpinner{out: &buf, isTTY: true}
	s.Show("Watching")

	called := false
	s.Suspend(func() { called = true })
	if !called {
		t.Error("Suspend should run fn")
	}
	if !s.Active() {
		t.Error("Suspend should leave the spinner active")
	}
}
