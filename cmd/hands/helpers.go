package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/richhaase/hands/internal/agent"
	"github.com/richhaase/hands/internal/check"
	"github.com/richhaase/hands/internal/config"
	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/runner"
	"github.com/richhaase/hands/internal/terminal"
)

// exitCodeError is a wrapper type for returning exit codes via error interface.
type exitCodeError struct {
	code domain.ExitCode
}

func (e exitCodeError) Error() string {
	switch e.code {
	case domain.ExitError:
		return "hands failed with error"
	default:
		return fmt.Sprintf("exit code %d", e.code)
	}
}

func exitCode(code domain.ExitCode) error {
	if code == domain.ExitOK {
		return nil
	}
	return exitCodeError{code: code}
}

// settings is everything a run needs from flags, env vars, and the config file.
type settings struct {
	resolved        config.ResolvedConfig
	excludePatterns []string
	workDir         string
}

// loadSettings loads .env, the config file, and env vars, then applies the
// flags set on cmd. It does not validate the result.
func loadSettings(ctx context.Context, cmd *cobra.Command, logger *terminal.Logger) (*settings, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	if err := config.LoadDotEnv(workDir); err != nil {
		logger.Logf(terminal.StyleWarning, "Warning: %v", err)
	}

	var cfg *config.Config
	if !noConfig {
		result, err := config.LoadWithWarnings(ctx)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
		}
	}

	envState, envWarnings := config.LoadEnvState()
	for _, warning := range envWarnings {
		logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
	}

	flags := cmd.Flags()
	flagState := config.FlagState{
		CheckSet:        flags.Changed("check"),
		FileCheckSet:    flags.Changed("file-check"),
		AgentSet:        flags.Changed("agent"),
		AgentCommandSet: flags.Changed("agent-command"),
		CommentTagSet:   flags.Changed("tag"),
		WatchSet:        flags.Changed("watch") || flags.Changed("no-watch"),
		MaxAttemptsSet:  flags.Changed("max-attempts"),
		TimeoutSet:      flags.Changed("timeout"),
	}

	// --no-watch wins when both are given.
	flagValues := config.ResolvedConfig{
		Check:        checkCommand,
		FileCheck:    fileCheckCommand,
		Agent:        agentName,
		AgentCommand: agentCommand,
		CommentTag:   commentTag,
		Watch:        watchFiles && !noWatch,
		MaxAttempts:  maxAttempts,
		Timeout:      timeout,
	}

	return &settings{
		resolved:        config.Resolve(cfg, envState, flagState, flagValues),
		excludePatterns: config.Merge(cfg, excludePatterns),
		workDir:         workDir,
	}, nil
}

// newLoop validates resolved and wires the agent and checks into a remediation loop.
func newLoop(resolved config.ResolvedConfig, workDir string, logger *terminal.Logger, spinner *terminal.StatusSpinner) (*runner.Loop, error) {
	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	a, err := agent.Resolve(resolved.Agent, resolved.AgentCommand)
	if err != nil {
		return nil, err
	}
	if err := a.IsAvailable(); err != nil {
		return nil, err
	}

	return runner.New(runner.Config{
		Trigger:     resolved.CommentTag,
		Check:       resolved.Check,
		FileCheck:   resolved.FileCheck,
		MaxAttempts: resolved.MaxAttempts,
		Timeout:     resolved.Timeout,
	}, agent.NewInvoker(a, workDir), check.NewRunner(nil, workDir), logger, spinner)
}

// printConfig logs the settings a run starts with.
func printConfig(logger *terminal.Logger, r config.ResolvedConfig) {
	agentDesc := r.Agent
	if r.AgentCommand != "" {
		agentDesc = r.AgentCommand
	}

	logger.Log("Config loaded:", terminal.StyleInfo)
	logger.Logf(terminal.StyleDim, "  agent:       %s", agentDesc)
	logger.Logf(terminal.StyleDim, "  check:       %s", orNone(r.Check))
	logger.Logf(terminal.StyleDim, "  file check:  %s", orNone(r.FileCheck))
	logger.Logf(terminal.StyleDim, "  tag:         @%s", r.CommentTag)
	logger.Logf(terminal.StyleDim, "  watch:       %t", r.Watch)
	if r.MaxAttempts > 0 {
		logger.Logf(terminal.StyleDim, "  max attempts: %d", r.MaxAttempts)
	}
	if r.Timeout > 0 {
		logger.Logf(terminal.StyleDim, "  timeout:     %s", r.Timeout)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
