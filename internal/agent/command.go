package agent

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Compile-time interface check
var _ Agent = (*CommandAgent)(nil)

// CommandAgent runs a user-supplied shell command as the agent.
// The prompt is written to the command's stdin.
type CommandAgent struct {
	command string
}

// NewCommandAgent creates a CommandAgent for the given shell command line.
func NewCommandAgent(command string) *CommandAgent {
	return &CommandAgent{command: command}
}

// Name returns "custom".
func (c *CommandAgent) Name() string {
	return "custom"
}

// Command returns the configured shell command line.
func (c *CommandAgent) Command() string {
	return c.command
}

// IsAvailable checks that a command is configured and sh can be found.
func (c *CommandAgent) IsAvailable() error {
	if strings.TrimSpace(c.command) == "" {
		return errors.New("agent command is empty")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		return fmt.Errorf("sh not found in PATH: %w", err)
	}
	return nil
}

// Execute runs the command with sh -c.
func (c *CommandAgent) Execute(ctx context.Context, req *Request) (*Process, error) {
	if err := c.IsAvailable(); err != nil {
		return nil, err
	}

	stdin, tempFilePath, err := preparePrompt(req.WorkDir, req.Prompt)
	if err != nil {
		return nil, err
	}

	return executeCommand(ctx, executeOptions{
		Command:      "sh",
		Args:         []string{"-c", c.command},
		Stdin:        strings.NewReader(stdin),
		WorkDir:      req.WorkDir,
		TempFilePath: tempFilePath,
		StderrLine:   req.OnStderr,
	})
}
