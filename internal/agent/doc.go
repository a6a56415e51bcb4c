// Package agent runs coding-agent CLIs and decodes what they print.
//
// # Agents
//
// An Agent starts a CLI with a prompt on stdin and hands back the running
// Process, whose stdout is still streaming:
//
//   - ClaudeAgent runs claude with stream-json output and edit tools only
//   - CodexAgent runs codex exec with JSONL output
//   - CommandAgent runs any shell command line the user configured
//
// Prompts larger than RefFileSizeThreshold are written to a .hands-prompt-*.md
// file in the working directory, and the agent is told to read it instead.
//
// # Invoker
//
// Invoker drives one agent run to completion:
//
//	inv := agent.NewInvoker(agent.NewClaudeAgent(), repoRoot)
//	outcome, err := inv.Run(ctx, prompt, func(m *agent.Message) {
//	    fmt.Println(m.Text)
//	})
//
// Every stdout and stderr line is passed through DecodeMessage. Lines that are
// not a known transcript shape are dropped; they never affect the run. A
// nonzero exit is reported as *ExitError.
package agent
