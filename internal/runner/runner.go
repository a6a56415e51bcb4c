// Package runner drives one tagged comment to completion: agent run, checks,
// and another agent run with the check output until the checks pass.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/richhaase/hands/internal/agent"
	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/terminal"
)

// ErrMaxAttempts is returned when the checks still fail after the configured
// number of agent runs.
var ErrMaxAttempts = errors.New("checks still failing after max attempts")

// Spinner labels.
const (
	labelThinking = "Thinking..."
	labelFixing   = "Fixing errors..."
)

// Config holds the loop configuration.
type Config struct {
	Trigger   string
	Check     string
	FileCheck string
	// MaxAttempts caps agent runs per comment; 0 means no cap.
	MaxAttempts int
	// Timeout bounds each agent run and each check; 0 means none.
	Timeout time.Duration
}

// AgentRunner runs the coding agent once with a prompt.
type AgentRunner interface {
	Name() string
	Run(ctx context.Context, prompt string, observe agent.Observer) (*agent.Outcome, error)
}

// Checker runs the validation commands.
type Checker interface {
	Run(ctx context.Context, command string) (domain.CheckResult, error)
	RunFiles(ctx context.Context, command string) (domain.CheckResult, error)
}

// Loop is the per-comment remediation loop.
type Loop struct {
	config  Config
	agent   AgentRunner
	checks  Checker
	logger  *terminal.Logger
	spinner *terminal.StatusSpinner
}

// New creates a Loop. spinner may be nil.
func New(config Config, a AgentRunner, checks Checker, logger *terminal.Logger, spinner *terminal.StatusSpinner) (*Loop, error) {
	if a == nil {
		return nil, fmt.Errorf("an agent is required")
	}
	if checks == nil {
		return nil, fmt.Errorf("a checker is required")
	}
	if config.Check == "" {
		return nil, fmt.Errorf("a check command is required")
	}
	if config.Trigger == "" {
		return nil, fmt.Errorf("a comment tag is required")
	}
	if logger == nil {
		logger = terminal.NewLogger()
	}
	return &Loop{
		config:  config,
		agent:   a,
		checks:  checks,
		logger:  logger,
		spinner: spinner,
	}, nil
}

// Run hands comment to the agent and re-runs it with check failures until
// the checks pass. The first prompt describes the comment; every later one
// is the transcript of the check that failed.
//
// A nonzero agent exit ends the loop with *agent.ExitError. The returned
// result is non-nil even when err is set.
func (l *Loop) Run(ctx context.Context, comment domain.TaggedComment) (*domain.LoopResult, error) {
	start := time.Now()
	result := &domain.LoopResult{Comment: comment}
	defer func() { result.Duration = time.Since(start) }()

	l.logger.Logf(terminal.StylePhase, "Processing comment %s", comment.Location())

	prompt := agent.BuildPrompt(l.config.Trigger, comment)
	label := labelThinking
	for {
		if l.config.MaxAttempts > 0 && result.Attempts >= l.config.MaxAttempts {
			return result, fmt.Errorf("comment %s: %w (%d)", comment.Location(), ErrMaxAttempts, result.Attempts)
		}
		result.Attempts++

		outcome, err := l.runAgent(ctx, prompt, label)
		if outcome != nil {
			result.CostUSD += outcome.CostUSD
		}
		if err != nil {
			return result, fmt.Errorf("comment %s: %w", comment.Location(), err)
		}

		failure, err := l.validate(ctx)
		if err != nil {
			return result, fmt.Errorf("comment %s: %w", comment.Location(), err)
		}
		if failure == "" {
			break
		}
		result.CheckFailures++
		prompt = failure
		label = labelFixing
	}

	attempts := "attempt"
	if result.Attempts != 1 {
		attempts = "attempts"
	}
	l.logger.Logf(terminal.StyleSuccess, "Comment %s processed %s(%d %s, %s, %s)%s",
		comment.Location(), terminal.Color(terminal.Dim), result.Attempts, attempts,
		terminal.FormatCost(result.CostUSD), terminal.FormatDuration(time.Since(start)), terminal.Color(terminal.Reset))
	return result, nil
}

func (l *Loop) runAgent(ctx context.Context, prompt, label string) (*agent.Outcome, error) {
	ctx, cancel := l.subprocessContext(ctx)
	defer cancel()

	l.show(label)
	defer l.hide()

	outcome, err := l.agent.Run(ctx, prompt, l.observe)
	if outcome != nil && outcome.Dropped > 0 {
		l.logger.Debugf("%s: %d undecoded output lines", l.agent.Name(), outcome.Dropped)
	}
	return outcome, err
}

func (l *Loop) observe(msg *agent.Message) {
	switch msg.Kind {
	case agent.KindAssistant:
		l.logger.Log("🤖 "+msg.Text, terminal.StyleInfo)
	case agent.KindFinal:
		l.logger.Logf(terminal.StyleDim, "💸 %s in %s",
			terminal.FormatCost(msg.CostUSD), terminal.FormatAgentDuration(msg.Duration))
	}
}

// validate runs the file-scoped check, then the full check. It returns the
// transcript of the first failing check, or "" when everything passed.
func (l *Loop) validate(ctx context.Context) (string, error) {
	if l.config.FileCheck != "" {
		res, err := l.runCheck(ctx, l.config.FileCheck, l.checks.RunFiles)
		if err != nil {
			return "", err
		}
		if !res.OK {
			return res.Error, nil
		}
	}

	res, err := l.runCheck(ctx, l.config.Check, l.checks.Run)
	if err != nil {
		return "", err
	}
	if !res.OK {
		return res.Error, nil
	}
	return "", nil
}

func (l *Loop) runCheck(ctx context.Context, command string, run func(context.Context, string) (domain.CheckResult, error)) (domain.CheckResult, error) {
	ctx, cancel := l.subprocessContext(ctx)
	defer cancel()

	l.show("$ " + command)
	res, err := run(ctx, command)
	l.hide()
	if err != nil {
		return res, err
	}

	if res.OK {
		l.logger.Logf(terminal.StyleSuccess, "%s passed", command)
	} else {
		l.logger.Logf(terminal.StyleWarning, "%s failed", command)
	}
	return res, nil
}

func (l *Loop) subprocessContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.config.Timeout > 0 {
		return context.WithTimeout(ctx, l.config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (l *Loop) show(label string) {
	if l.spinner != nil {
		l.spinner.Show(label)
	}
}

func (l *Loop) hide() {
	if l.spinner != nil {
		l.spinner.Hide()
	}
}
