package agent

import "fmt"

// SupportedAgents lists all valid agent names.
var SupportedAgents = []string{"claude", "codex"}

// DefaultAgent is the agent used when none is specified.
const DefaultAgent = "claude"

// NewAgent creates an Agent by name.
// Supported agents: claude, codex
func NewAgent(name string) (Agent, error) {
	switch name {
	case "claude":
		return NewClaudeAgent(), nil
	case "codex":
		return NewCodexAgent(), nil
	default:
		return nil, fmt.Errorf("unknown agent %q, supported: claude, codex", name)
	}
}

// Resolve picks the agent for a run: a non-empty command overrides the named preset.
func Resolve(name, command string) (Agent, error) {
	if command != "" {
		return NewCommandAgent(command), nil
	}
	if name == "" {
		name = DefaultAgent
	}
	return NewAgent(name)
}
