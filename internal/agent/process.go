package agent

import (
	"io"
	"sync"
	"sync/atomic"
)

// Process is an agent CLI that has been started. Its stdout streams through
// Read; Wait reaps it. Stderr is only complete once Wait has returned.
type Process struct {
	stdout io.Reader
	wait   func() int
	stderr func() string

	once   sync.Once
	code   int
	exited atomic.Bool
}

func newProcess(stdout io.Reader, wait func() int, stderr func() string) *Process {
	return &Process{stdout: stdout, wait: wait, stderr: stderr}
}

// Read reads the agent's stdout.
func (p *Process) Read(b []byte) (int, error) {
	return p.stdout.Read(b)
}

// Wait stops reading stdout, waits for the agent to exit and returns its exit
// code: -1 when it could not be waited on. Only the first call waits.
func (p *Process) Wait() int {
	p.once.Do(func() {
		if p.wait != nil {
			p.code = p.wait()
		}
		p.exited.Store(true)
	})
	return p.code
}

// ExitCode returns the code Wait returned, or 0 before Wait.
func (p *Process) ExitCode() int {
	return p.code
}

// Stderr returns everything the agent wrote to stderr.
func (p *Process) Stderr() string {
	if p.stderr == nil {
		return ""
	}
	return p.stderr()
}

// Exited reports whether Wait has returned.
func (p *Process) Exited() bool {
	return p.exited.Load()
}
