package check

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

type mockCmd struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
	commands []string
	dirs     []string
}

func (m *mockCmd) Run(_ context.Context, dir string, command string) (string, string, int, error) {
	m.commands = append(m.commands, command)
	m.dirs = append(m.dirs, dir)
	return m.stdout, m.stderr, m.exitCode, m.err
}

func staticFiles(files ...string) FileLister {
	return func(context.Context, string) ([]string, error) {
		return files, nil
	}
}

func TestRunner_Run_Pass(t *testing.T) {
	mock := &mockCmd{stdout: "all good"}
	r := NewRunner(mock, "/repo")

	result, err := r.Run(context.Background(), "npm test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Errorf("expected OK result, got %+v", result)
	}
	if result.Error != "" {
		t.Errorf("expected empty Error, got %q", result.Error)
	}
	if mock.dirs[0] != "/repo" {
		t.Errorf("expected command to run in /repo, got %s", mock.dirs[0])
	}
}

func TestRunner_Run_FailureTranscript(t *testing.T) {
	mock := &mockCmd{stdout: "E1", stderr: "warn", exitCode: 1}
	r := NewRunner(mock, ".")

	result, err := r.Run(context.Background(), "npm test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK {
		t.Fatal("expected failed result")
	}
	want := "Running \"npm test\" failed, please fix the following errors: \n\n\n\nE1\n\n\n\nwarn"
	if result.Error != want {
		t.Errorf("Error = %q, want %q", result.Error, want)
	}
}

func TestRunner_Run_ExecError(t *testing.T) {
	mock := &mockCmd{exitCode: -1, err: errors.New("exec: sh not found")}
	r := NewRunner(mock, ".")

	if _, err := r.Run(context.Background(), "npm test"); err == nil {
		t.Fatal("expected error when the command cannot start")
	}
}

func TestRunner_RunFiles_QuotesFiles(t *testing.T) {
	mock := &mockCmd{}
	r := NewRunner(mock, ".").WithFileLister(staticFiles("src/a.ts", "src/with space.ts"))

	result, err := r.RunFiles(context.Background(), "eslint")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Errorf("expected OK result, got %+v", result)
	}
	if len(mock.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(mock.commands))
	}
	want := "eslint src/a.ts 'src/with space.ts'"
	if mock.commands[0] != want {
		t.Errorf("command = %q, want %q", mock.commands[0], want)
	}
}

func TestRunner_RunFiles_NothingModified(t *testing.T) {
	mock := &mockCmd{exitCode: 1}
	r := NewRunner(mock, ".").WithFileLister(staticFiles())

	result, err := r.RunFiles(context.Background(), "eslint")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OK {
		t.Errorf("expected pass when no files are modified, got %+v", result)
	}
	if len(mock.commands) != 0 {
		t.Errorf("expected no command to run, got %v", mock.commands)
	}
}

func TestRunner_RunFiles_NonASCIIName(t *testing.T) {
	dir := t.TempDir()
	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	git("init")
	git("config", "user.email", "test@test.com")
	git("config", "user.name", "Test User")

	path := filepath.Join(dir, "naïve.go")
	if err := os.WriteFile(path, []byte("package a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	git("add", ".")
	git("commit", "-m", "initial")
	if err := os.WriteFile(path, []byte("package b\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := NewRunner(nil, dir).RunFiles(context.Background(), "ls --")
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if !result.OK {
		t.Errorf("file check failed on a non-ASCII name:\n%s", result.Error)
	}
}

func TestRunner_RunFiles_ListerError(t *testing.T) {
	r := NewRunner(&mockCmd{}, ".").WithFileLister(func(context.Context, string) ([]string, error) {
		return nil, errors.New("not a git repository")
	})

	if _, err := r.RunFiles(context.Background(), "eslint"); err == nil {
		t.Fatal("expected lister error to propagate")
	}
}

func TestExecRunner_ExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		command    string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"success", "echo ok", 0, "ok\n", ""},
		{"failure", "echo E1; echo oops >&2; exit 3", 3, "E1\n", "oops\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, code, err := (&ExecRunner{}).Run(context.Background(), t.TempDir(), tc.command)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if code != tc.wantCode {
				t.Errorf("exit code = %d, want %d", code, tc.wantCode)
			}
			if stdout != tc.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout, tc.wantStdout)
			}
			if stderr != tc.wantStderr {
				t.Errorf("stderr = %q, want %q", stderr, tc.wantStderr)
			}
		})
	}
}

func TestExecRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err := (&ExecRunner{}).Run(ctx, t.TempDir(), "sleep 5")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFormatFailure(t *testing.T) {
	got := FormatFailure("make lint", "out", "err")
	if !strings.HasPrefix(got, `Running "make lint" failed`) {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "out\n\n\n\nerr") {
		t.Errorf("unexpected suffix: %q", got)
	}
}
