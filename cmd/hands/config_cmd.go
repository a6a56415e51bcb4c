package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/richhaase/hands/internal/config"
	"github.com/richhaase/hands/internal/terminal"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hands configuration",
		Long:  "View, initialize, and validate hands configuration files and environment variables.",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display resolved configuration",
		Long:  "Show the fully resolved configuration from defaults, config file, and environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			_ = config.LoadDotEnv(cwd)

			result, err := config.LoadWithWarnings(cmd.Context())
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			envState, _ := config.LoadEnvState()

			resolved := config.Resolve(result.Config, envState, config.FlagState{}, config.Defaults)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Resolved configuration:")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %-18s %s\n", "check:", orNone(resolved.Check))
			fmt.Fprintf(out, "  %-18s %s\n", "file_check:", orNone(resolved.FileCheck))
			fmt.Fprintf(out, "  %-18s %s\n", "agent:", resolved.Agent)
			fmt.Fprintf(out, "  %-18s %s\n", "agent_command:", orNone(resolved.AgentCommand))
			fmt.Fprintf(out, "  %-18s %s\n", "comment_tag:", resolved.CommentTag)
			fmt.Fprintf(out, "  %-18s %t\n", "watch:", resolved.Watch)
			fmt.Fprintf(out, "  %-18s %d\n", "max_attempts:", resolved.MaxAttempts)
			fmt.Fprintf(out, "  %-18s %s\n", "timeout:", resolved.Timeout)
			fmt.Fprintf(out, "  %-18s %d\n", "queue_size:", resolved.QueueSize)
			for _, p := range result.Config.ExcludePatterns {
				fmt.Fprintf(out, "  %-18s %s\n", "exclude_pattern:", p)
			}

			return nil
		},
	}
}

const starterConfig = `# hands configuration file

# Command that validates the whole project (required)
# check: npm run check

# Command run first with the modified files appended
# file_check: npx eslint

# Agent preset: claude, codex (default: claude)
# agent: claude

# Custom agent command; reads the prompt on stdin and overrides agent
# agent_command: ""

# Comment tag to look for, without the @ (default: ai)
# comment_tag: ai

# Keep watching after the initial scan (default: true)
# watch: true

# Give up on a comment after N agent runs, 0 for no limit (default: 0)
# max_attempts: 0

# Timeout per agent run and per check, 0 for none (default: 0)
# timeout: 10m

# Maximum number of files waiting to be processed (default: 1024)
# queue_size: 1024

# Paths to skip, as globs
# exclude_patterns:
#   - "*.gen.go"
`

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a starter .hands.yaml file",
		Long:  "Create a commented .hands.yaml configuration file in the git repository root, or the current directory outside a repository.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			// Write where runtime loading looks
			configPath := filepath.Join(config.ConfigDir(cmd.Context(), cwd), config.ConfigFileName)

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", configPath)
			}

			if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with default settings (commented out).\n", configPath)
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and environment variables",
		Long:  "Load and validate the config file and environment variables, reporting any warnings or errors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			terminal.ConfigureColors()
			logger := terminal.NewLogger()
			var errs []string
			var warnings []string

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if err := config.LoadDotEnv(cwd); err != nil {
				errs = append(errs, err.Error())
			}

			// Don't early-return so env var issues are also reported
			cfg := &config.Config{}
			result, err := config.LoadWithWarnings(cmd.Context())
			if err != nil {
				errs = append(errs, fmt.Sprintf("config file: %v", err))
			} else {
				cfg = result.Config
				warnings = append(warnings, result.Warnings...)
			}

			// At runtime unparseable env vars are skipped with a warning; here
			// they are errors.
			envState, envWarnings := config.LoadEnvState()
			errs = append(errs, envWarnings...)

			resolved := config.Resolve(cfg, envState, config.FlagState{}, config.Defaults)
			if err := resolved.Validate(); err != nil {
				errs = append(errs, err.Error())
			}

			for _, w := range warnings {
				logger.Logf(terminal.StyleWarning, "Config: %s", w)
			}
			for _, e := range errs {
				logger.Logf(terminal.StyleError, "%s", e)
			}

			if len(errs) > 0 {
				return fmt.Errorf("configuration has %d error(s)", len(errs))
			}

			if len(warnings) > 0 {
				logger.Log("Configuration is valid (with warnings).", terminal.StyleSuccess)
			} else {
				logger.Log("Configuration is valid.", terminal.StyleSuccess)
			}

			return nil
		},
	}
}
