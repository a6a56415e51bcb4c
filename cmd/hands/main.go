// Package main provides the CLI entry point for hands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/richhaase/hands/internal/coordinator"
	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/ignore"
	"github.com/richhaase/hands/internal/runner"
	"github.com/richhaase/hands/internal/terminal"
	"github.com/richhaase/hands/internal/watch"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

var (
	checkCommand     string
	fileCheckCommand string
	agentName        string
	agentCommand     string
	commentTag       string
	watchFiles       bool
	noWatch          bool
	maxAttempts      int
	timeout          time.Duration
	excludePatterns  []string
	noConfig         bool
	verbose          bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		// Check if this is an exit code wrapper (not a real error)
		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}

	return domain.ExitOK.Int()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hands",
		Short: "Hand tagged comments to a coding agent until your checks pass",
		Long: `Watch source files for comments tagged "// @ai ..." and hand each one to a
coding agent. After every agent run the check command is executed; failures are
sent back to the agent until the checks pass.

Exit codes:
  0 - Finished or interrupted
  2 - Error`,
		Args:          cobra.NoArgs,
		RunE:          runHands,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersionString(),
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Defaults are resolved via config.Resolve with precedence: flag > env > config > default
	addSettingsFlags(rootCmd)
	rootCmd.Flags().BoolVar(&watchFiles, "watch", true,
		"Keep watching for changes after the initial scan (env: HANDS_WATCH)")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"Process the initial scan, then exit")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newScanCmd())

	setGroupedUsage(rootCmd)
	return rootCmd
}

// addSettingsFlags registers the flags shared by every command that runs
// the agent.
func addSettingsFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&checkCommand, "check", "",
		"Command validating the whole project, e.g. \"npm run check\" (env: HANDS_CHECK)")
	flags.StringVar(&fileCheckCommand, "file-check", "",
		"Command run first with the modified files appended (env: HANDS_FILE_CHECK)")
	flags.StringVarP(&agentName, "agent", "a", "",
		"Agent preset: claude, codex (default: claude, env: HANDS_AGENT)")
	flags.StringVar(&agentCommand, "agent-command", "",
		"Custom agent shell command reading the prompt from stdin (env: HANDS_AGENT_COMMAND)")
	flags.StringVarP(&commentTag, "tag", "t", "",
		"Comment tag to look for, without the @ (default: ai, env: HANDS_COMMENT_TAG)")
	flags.IntVar(&maxAttempts, "max-attempts", 0,
		"Give up on a comment after N agent runs, 0 for no limit (env: HANDS_MAX_ATTEMPTS)")
	flags.DurationVar(&timeout, "timeout", 0,
		"Timeout per agent run and per check, 0 for none (env: HANDS_TIMEOUT)")
	flags.StringArrayVar(&excludePatterns, "exclude-pattern", nil,
		"Skip paths matching glob pattern (repeatable)")
	flags.BoolVar(&noConfig, "no-config", false,
		"Skip loading .hands.yaml config file")
	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Print debug output")
}

func buildVersionString() string {
	return fmt.Sprintf("hands %s (%s)", version, commit)
}

func runHands(cmd *cobra.Command, _ []string) error {
	terminal.ConfigureColors()
	logger := terminal.NewLogger()
	logger.SetVerbose(verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Logf(terminal.StyleWarning, "Received %s, shutting down...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	settings, err := loadSettings(ctx, cmd, logger)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}
	resolved := settings.resolved
	printConfig(logger, resolved)

	matcher, err := ignore.New(".", settings.excludePatterns)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}
	if path := matcher.GitignorePath(); path != "" {
		logger.Debugf("Using ignore rules from %s", path)
	}

	spinner := terminal.NewStatusSpinner()
	logger.AttachSpinner(spinner)
	spinnerCtx, stopSpinner := context.WithCancel(context.Background())
	spinnerDone := make(chan struct{})
	go func() {
		spinner.Run(spinnerCtx)
		close(spinnerDone)
	}()
	defer func() {
		stopSpinner()
		<-spinnerDone
	}()

	loop, err := newLoop(resolved, settings.workDir, logger, spinner)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	watchingLabel := fmt.Sprintf("Watching files for %q...", resolved.CommentTag)

	var stats domain.SessionStats
	coord := coordinator.New(loop, coordinator.Config{
		Trigger:   resolved.CommentTag,
		QueueSize: resolved.QueueSize,
		OnError: func(path string, err error) {
			stats.RecordFailure()
			logger.Logf(terminal.StyleError, "%s: %v", path, err)
		},
		OnResult: stats.Record,
		OnIdle: func() {
			if resolved.Watch {
				spinner.Show(watchingLabel)
			}
		},
	})

	workerDone := make(chan struct{})
	go func() {
		coord.Run(ctx)
		close(workerDone)
	}()
	finish := func() error {
		cancel()
		<-workerDone
		spinner.Hide()
		fmt.Fprintln(os.Stderr, runner.RenderReport(stats))
		return nil
	}

	handle := func(ev watch.Event) {
		logger.Debugf("%s %s", ev.Kind, ev.Path)
		if err := coord.HandleEvent(ctx, ev.Path); err != nil && ctx.Err() == nil {
			logger.Logf(terminal.StyleError, "%v", err)
		}
	}

	// Start watching before the scan so files written during it are not missed.
	var watcher *watch.Watcher
	if resolved.Watch {
		watcher, err = watch.New(".", matcher)
		if err != nil {
			logger.Logf(terminal.StyleError, "%v", err)
			return exitCode(domain.ExitError)
		}
		defer watcher.Close()
	}

	if err := watch.Scan(".", matcher, handle); err != nil {
		logger.Logf(terminal.StyleError, "Scan failed: %v", err)
		_ = finish()
		return exitCode(domain.ExitError)
	}

	if !resolved.Watch {
		if err := coord.WaitIdle(ctx); err == nil {
			logger.Logf(terminal.StyleInfo, "No more comments with %s found, exiting...", resolved.CommentTag)
		}
		return finish()
	}

	if len(coord.Pending()) == 0 && !coord.InFlight() {
		spinner.Show(watchingLabel)
	}
	err = watcher.Run(ctx, handle, func(err error) {
		logger.Logf(terminal.StyleError, "Watch error: %v", err)
	})
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
	}
	return finish()
}
