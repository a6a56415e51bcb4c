package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/richhaase/hands/internal/comment"
	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/ignore"
	"github.com/richhaase/hands/internal/runner"
	"github.com/richhaase/hands/internal/terminal"
	"github.com/richhaase/hands/internal/watch"
)

var pickComments bool

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "List tagged comments without running the agent",
		Long: `Print every tagged comment under the given files or directories (default: the
current directory). With --pick, choose comments interactively and hand the
selected ones to the agent in order.`,
		RunE: runScan,
	}
	cmd.Flags().BoolVar(&pickComments, "pick", false,
		"Choose comments interactively and run the agent on them")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	terminal.ConfigureColors()
	logger := terminal.NewLogger()
	logger.SetVerbose(verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := loadSettings(ctx, cmd, logger)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	matcher, err := ignore.New(".", s.excludePatterns)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	comments, err := collectComments(args, matcher, s.resolved.CommentTag)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	if !pickComments {
		printComments(cmd.OutOrStdout(), comments)
		return nil
	}

	selected, err := terminal.RunSelector(comments)
	if err != nil {
		if errors.Is(err, terminal.ErrNotInteractive) {
			logger.Log("--pick requires an interactive terminal", terminal.StyleError)
		} else {
			logger.Logf(terminal.StyleError, "%v", err)
		}
		return exitCode(domain.ExitError)
	}
	if len(selected) == 0 {
		logger.Log("Nothing selected", terminal.StyleDim)
		return nil
	}

	loop, err := newLoop(s.resolved, s.workDir, logger, nil)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	stats := runSelected(ctx, loop, selected, logger)
	fmt.Fprintln(os.Stderr, runner.RenderReport(stats))
	return nil
}

// loopRunner is the part of runner.Loop that runSelected needs.
type loopRunner interface {
	Run(ctx context.Context, c domain.TaggedComment) (*domain.LoopResult, error)
}

// runSelected processes comments one at a time, continuing past failures
// until ctx is cancelled.
func runSelected(ctx context.Context, loop loopRunner, comments []domain.TaggedComment, logger *terminal.Logger) domain.SessionStats {
	var stats domain.SessionStats
	for _, c := range comments {
		if ctx.Err() != nil {
			break
		}
		result, err := loop.Run(ctx, c)
		if err != nil {
			stats.RecordFailure()
			logger.Logf(terminal.StyleError, "%v", err)
			continue
		}
		stats.Record(result)
	}
	return stats
}

// collectComments extracts tagged comments from paths. Directories are
// walked with the ignore rules; files named explicitly are always read.
func collectComments(paths []string, matcher *ignore.Matcher, tag string) ([]domain.TaggedComment, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = watch.Scan(p, matcher, func(ev watch.Event) {
			files = append(files, ev.Path)
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
	}

	comments := []domain.TaggedComment{}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		comments = append(comments, comment.Extract(f, string(content), tag)...)
	}
	return comments, nil
}

// printComments writes one "path:line: text" entry per comment, with
// continuation lines indented below it.
func printComments(w io.Writer, comments []domain.TaggedComment) {
	for _, c := range comments {
		lines := strings.Split(c.Comment, "\n")
		fmt.Fprintf(w, "%s: %s\n", c.Location(), lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "    %s\n", l)
		}
	}
}
