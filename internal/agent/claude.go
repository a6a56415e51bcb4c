package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Compile-time interface check
var _ Agent = (*ClaudeAgent)(nil)

// claudeArgs run Claude non-interactively with a JSON event stream on stdout.
// Edits are allowed; shell access is not, so the agent cannot run checks itself.
var claudeArgs = []string{
	"--output-format", "stream-json",
	"--verbose",
	"--max-turns", "100",
	"--allowedTools", "Edit,Write,WebFetch",
	"--print",
}

// ClaudeAgent implements the Agent interface for the Claude CLI backend.
type ClaudeAgent struct{}

// NewClaudeAgent creates a new ClaudeAgent instance.
func NewClaudeAgent() *ClaudeAgent {
	return &ClaudeAgent{}
}

// Name returns the agent's identifier.
func (c *ClaudeAgent) Name() string {
	return "claude"
}

// IsAvailable checks if the claude CLI is installed and accessible.
func (c *ClaudeAgent) IsAvailable() error {
	_, err := exec.LookPath("claude")
	if err != nil {
		return fmt.Errorf("claude CLI not found in PATH: %w", err)
	}
	return nil
}

// Execute runs 'claude --print' with the prompt piped via stdin.
// For large prompts (>100KB), the prompt is written to a reference file and
// Claude is instructed to read it with its Read tool.
func (c *ClaudeAgent) Execute(ctx context.Context, req *Request) (*Process, error) {
	if err := c.IsAvailable(); err != nil {
		return nil, err
	}

	stdin, tempFilePath, err := preparePrompt(req.WorkDir, req.Prompt)
	if err != nil {
		return nil, err
	}

	return executeCommand(ctx, executeOptions{
		Command:      "claude",
		Args:         claudeArgs,
		Stdin:        strings.NewReader(stdin),
		WorkDir:      req.WorkDir,
		TempFilePath: tempFilePath,
		StderrLine:   req.OnStderr,
	})
}
