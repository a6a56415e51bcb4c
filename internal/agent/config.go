package agent

// Request contains everything needed for a single agent execution.
type Request struct {
	// Prompt is written to the agent's stdin.
	Prompt string

	// WorkDir is the working directory for the agent (defaults to current directory).
	// Oversized prompts are written to a reference file here.
	WorkDir string

	// OnStderr, when set, receives each stderr line as it is produced.
	// Stderr is captured for Stderr() either way.
	OnStderr func(line string)
}
