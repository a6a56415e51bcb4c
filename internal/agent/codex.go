package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Compile-time interface check
var _ Agent = (*CodexAgent)(nil)

// codexArgs run Codex with JSONL events and automatic edit approval.
// The trailing "-" reads the prompt from stdin.
var codexArgs = []string{"exec", "--json", "--color", "never", "--full-auto", "-"}

// CodexAgent implements the Agent interface for the Codex CLI backend.
type CodexAgent struct{}

// NewCodexAgent creates a new CodexAgent instance.
func NewCodexAgent() *CodexAgent {
	return &CodexAgent{}
}

// Name returns the agent's identifier.
func (c *CodexAgent) Name() string {
	return "codex"
}

// IsAvailable checks if the codex CLI is installed and accessible.
func (c *CodexAgent) IsAvailable() error {
	_, err := exec.LookPath("codex")
	if err != nil {
		return fmt.Errorf("codex CLI not found in PATH: %w", err)
	}
	return nil
}

// Execute runs 'codex exec' with the prompt piped via stdin. Codex can read
// files within its working directory, so oversized prompts use a reference file.
func (c *CodexAgent) Execute(ctx context.Context, req *Request) (*Process, error) {
	if err := c.IsAvailable(); err != nil {
		return nil, err
	}

	stdin, tempFilePath, err := preparePrompt(req.WorkDir, req.Prompt)
	if err != nil {
		return nil, err
	}

	return executeCommand(ctx, executeOptions{
		Command:      "codex",
		Args:         codexArgs,
		Stdin:        strings.NewReader(stdin),
		WorkDir:      req.WorkDir,
		TempFilePath: tempFilePath,
		StderrLine:   req.OnStderr,
	})
}
