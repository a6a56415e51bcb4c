package agent

import (
	"bufio"
	"context"
	"fmt"
	"sync"
	"time"
)

// maxLineSize bounds a single transcript line. Claude's stream-json can put a
// whole file edit on one line.
const maxLineSize = 10 * 1024 * 1024

// Observer receives decoded transcript messages. It is called from the
// goroutine reading stdout and from the one reading stderr, never concurrently.
type Observer func(*Message)

// Outcome summarizes a finished agent run.
type Outcome struct {
	CostUSD  float64
	Duration time.Duration
	// Messages counts decoded messages; Dropped counts lines that were not.
	Messages int
	Dropped  int
}

// Invoker runs an Agent to completion, decoding its output as it streams.
type Invoker struct {
	agent   Agent
	workDir string
}

// NewInvoker creates an Invoker running a in workDir.
func NewInvoker(a Agent, workDir string) *Invoker {
	return &Invoker{agent: a, workDir: workDir}
}

// Name returns the wrapped agent's name.
func (i *Invoker) Name() string {
	return i.agent.Name()
}

// Run sends prompt to the agent and waits for it to exit. Decoded messages go
// to observe, which may be nil. A nonzero exit is returned as *ExitError.
func (i *Invoker) Run(ctx context.Context, prompt string, observe Observer) (*Outcome, error) {
	var mu sync.Mutex
	outcome := &Outcome{}
	handle := func(line string) {
		mu.Lock()
		defer mu.Unlock()

		msg := DecodeMessage(line)
		if msg == nil {
			if line != "" {
				outcome.Dropped++
			}
			return
		}
		outcome.Messages++
		if msg.Kind == KindFinal {
			outcome.CostUSD += msg.CostUSD
			outcome.Duration += msg.Duration
		}
		if observe != nil {
			observe(msg)
		}
	}

	proc, err := i.agent.Execute(ctx, &Request{
		Prompt:   prompt,
		WorkDir:  i.workDir,
		OnStderr: handle,
	})
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(proc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		handle(scanner.Text())
	}
	scanErr := scanner.Err()

	code := proc.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcome, fmt.Errorf("%s interrupted: %w", i.agent.Name(), ctxErr)
	}
	if code != 0 {
		return outcome, &ExitError{Agent: i.agent.Name(), Code: code, Stderr: proc.Stderr()}
	}
	if scanErr != nil {
		return outcome, fmt.Errorf("failed to read %s output: %w", i.agent.Name(), scanErr)
	}
	return outcome, nil
}
