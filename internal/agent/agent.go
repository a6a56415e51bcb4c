package agent

import (
	"context"
)

// Agent represents a coding-agent CLI that can act on a prompt.
// Implementations include ClaudeAgent, CodexAgent and CommandAgent.
type Agent interface {
	// Name returns the agent's identifier (e.g., "claude", "codex").
	Name() string

	// IsAvailable checks if the agent's backend CLI is installed and accessible.
	// Returns an error if the agent cannot be used.
	IsAvailable() error

	// Execute starts the agent with the request's prompt on stdin. The
	// caller drains the returned Process and must call Wait on it.
	Execute(ctx context.Context, req *Request) (*Process, error)
}
