package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
)

// executeOptions describes one agent CLI launch.
type executeOptions struct {
	Command string
	Args    []string
	// Stdin carries the prompt.
	Stdin   io.Reader
	WorkDir string
	// TempFilePath is a prompt file removed once the process is reaped.
	TempFilePath string
	// StderrLine, if set, receives stderr one line at a time.
	StderrLine func(string)
}

// executeCommand starts an agent CLI in its own process group and returns it
// with stdout still streaming. Cancelling ctx kills the whole group, so
// helpers the agent spawned cannot keep stdout open.
func executeCommand(ctx context.Context, opts executeOptions) (*Process, error) {
	// #nosec G204 - a known agent CLI, or sh running the user's configured command.
	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	cmd.Stdin = opts.Stdin
	cmd.Dir = opts.WorkDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stderr bytes.Buffer
	var lines *lineWriter
	cmd.Stderr = &stderr
	if opts.StderrLine != nil {
		lines = newLineWriter(opts.StderrLine)
		cmd.Stderr = io.MultiWriter(&stderr, lines)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		CleanupTempFile(opts.TempFilePath)
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		CleanupTempFile(opts.TempFilePath)
		return nil, fmt.Errorf("failed to start %s: %w", opts.Command, err)
	}

	wait := func() int {
		defer CleanupTempFile(opts.TempFilePath)
		_ = stdout.Close()
		if ctx.Err() != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}

		code := 0
		if err := cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else {
				code = -1
			}
		}
		if lines != nil {
			lines.Flush()
		}
		return code
	}

	return newProcess(stdout, wait, stderr.String), nil
}

// lineWriter calls fn once per complete line written to it. exec copies
// stderr from a single goroutine, so it needs no locking.
type lineWriter struct {
	fn  func(string)
	buf []byte
}

func newLineWriter(fn func(string)) *lineWriter {
	return &lineWriter{fn: fn}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			return len(p), nil
		}
		w.fn(strings.TrimSuffix(string(w.buf[:i]), "\r"))
		w.buf = w.buf[i+1:]
	}
}

// Flush emits a trailing line that had no newline.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.fn(string(w.buf))
		w.buf = nil
	}
}
