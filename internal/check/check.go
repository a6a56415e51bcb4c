// Package check runs the user's validation commands and turns failures into
// prompts the agent can act on.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/kballard/go-shellquote"

	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/git"
)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, command string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by shelling out.
type ExecRunner struct{}

// Run executes command with sh -c. A nonzero exit is reported through
// exitCode, not err; err is reserved for commands that could not run.
func (e *ExecRunner) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("check %q interrupted: %w", command, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdoutBuf.String(), stderrBuf.String(), exitErr.ExitCode(), nil
		}
		return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
	}
	return stdoutBuf.String(), stderrBuf.String(), 0, nil
}

// FileLister returns the files the file-scoped check should receive.
type FileLister func(ctx context.Context, dir string) ([]string, error)

// Runner executes the full and file-scoped checks in a fixed directory.
type Runner struct {
	cmd   CommandRunner
	dir   string
	files FileLister
}

// NewRunner creates a Runner that executes commands in dir. The file-scoped
// check is given the files reported by git as modified.
func NewRunner(cmd CommandRunner, dir string) *Runner {
	if cmd == nil {
		cmd = &ExecRunner{}
	}
	return &Runner{cmd: cmd, dir: dir, files: git.ModifiedFiles}
}

// WithFileLister replaces the source of files for RunFiles.
func (r *Runner) WithFileLister(files FileLister) *Runner {
	r.files = files
	return r
}

// Run executes command and reports whether it exited 0.
func (r *Runner) Run(ctx context.Context, command string) (domain.CheckResult, error) {
	stdout, stderr, exitCode, err := r.cmd.Run(ctx, r.dir, command)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if exitCode == 0 {
		return domain.Passed(), nil
	}
	return domain.Failed(FormatFailure(command, stdout, stderr)), nil
}

// RunFiles executes command with the currently modified files appended as
// shell-quoted arguments. With nothing modified there is nothing to check,
// so the result is a pass and command is not run.
func (r *Runner) RunFiles(ctx context.Context, command string) (domain.CheckResult, error) {
	files, err := r.files(ctx, r.dir)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if len(files) == 0 {
		return domain.Passed(), nil
	}
	return r.Run(ctx, command+" "+shellquote.Join(files...))
}

// FormatFailure builds the transcript handed back to the agent when a check
// fails.
func FormatFailure(command, stdout, stderr string) string {
	return fmt.Sprintf("Running \"%s\" failed, please fix the following errors: \n\n\n\n%s\n\n\n\n%s", command, stdout, stderr)
}
