package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/richhaase/hands/internal/config"
	"github.com/richhaase/hands/internal/domain"
	"github.com/richhaase/hands/internal/terminal"
)

func clearHandsEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"HANDS_CHECK", "HANDS_FILE_CHECK", "HANDS_AGENT", "HANDS_AGENT_COMMAND",
		"HANDS_COMMENT_TAG", "HANDS_WATCH", "HANDS_MAX_ATTEMPTS", "HANDS_TIMEOUT",
		"HANDS_QUEUE_SIZE",
	} {
		t.Setenv(name, "")
	}
}

func TestExitCode(t *testing.T) {
	if err := exitCode(domain.ExitOK); err != nil {
		t.Errorf("exitCode(ExitOK) = %v, want nil", err)
	}

	err := exitCode(domain.ExitError)
	var ece exitCodeError
	if !errors.As(err, &ece) {
		t.Fatalf("exitCode(ExitError) = %v, want exitCodeError", err)
	}
	if ece.code != domain.ExitError {
		t.Errorf("code = %d, want %d", ece.code, domain.ExitError)
	}
	if ece.Error() != "hands failed with error" {
		t.Errorf("Error() = %q", ece.Error())
	}
}

func TestLoadSettings_Flags(t *testing.T) {
	clearHandsEnv(t)
	t.Chdir(t.TempDir())

	root := newRootCmd()
	if err := root.ParseFlags([]string{
		"--no-config",
		"--check", "make test",
		"--file-check", "eslint",
		"--tag", "todo",
		"--max-attempts", "3",
		"--timeout", "2m",
		"--watch", "--no-watch",
		"--exclude-pattern", "*.gen.go",
	}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	var buf bytes.Buffer
	s, err := loadSettings(context.Background(), root, terminal.NewLoggerTo(&buf))
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}

	r := s.resolved
	if r.Check != "make test" || r.FileCheck != "eslint" {
		t.Errorf("checks = %q, %q", r.Check, r.FileCheck)
	}
	if r.CommentTag != "todo" {
		t.Errorf("CommentTag = %q, want todo", r.CommentTag)
	}
	if r.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", r.MaxAttempts)
	}
	if r.Timeout != 2*time.Minute {
		t.Errorf("Timeout = %v, want 2m", r.Timeout)
	}
	if r.Watch {
		t.Error("Watch = true, want --no-watch to win")
	}
	if r.Agent != config.Defaults.Agent {
		t.Errorf("Agent = %q, want default %q", r.Agent, config.Defaults.Agent)
	}
	if len(s.excludePatterns) != 1 || s.excludePatterns[0] != "*.gen.go" {
		t.Errorf("excludePatterns = %v", s.excludePatterns)
	}
}

func TestLoadSettings_ConfigAndEnv(t *testing.T) {
	clearHandsEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "check: npm test\nagent: codex\nexclude_patterns:\n  - vendor\n"
	if err := os.WriteFile(config.ConfigFileName, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HANDS_CHECK", "go test ./...")

	root := newRootCmd()
	if err := root.ParseFlags([]string{"--exclude-pattern", "*.tmp"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	s, err := loadSettings(context.Background(), root, terminal.NewLoggerTo(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}

	if s.resolved.Check != "go test ./..." {
		t.Errorf("Check = %q, want env to override config", s.resolved.Check)
	}
	if s.resolved.Agent != "codex" {
		t.Errorf("Agent = %q, want codex from config", s.resolved.Agent)
	}
	if !s.resolved.Watch {
		t.Error("Watch = false, want default true")
	}
	want := map[string]bool{"vendor": true, "*.tmp": true}
	if len(s.excludePatterns) != len(want) {
		t.Fatalf("excludePatterns = %v", s.excludePatterns)
	}
	for _, p := range s.excludePatterns {
		if !want[p] {
			t.Errorf("unexpected exclude pattern %q", p)
		}
	}
}

func TestLoadSettings_WarnsOnBadEnv(t *testing.T) {
	clearHandsEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("HANDS_MAX_ATTEMPTS", "lots")

	root := newRootCmd()
	if err := root.ParseFlags([]string{"--no-config"}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := loadSettings(context.Background(), root, terminal.NewLoggerTo(&buf)); err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if !strings.Contains(buf.String(), "HANDS_MAX_ATTEMPTS") {
		t.Errorf("expected warning about HANDS_MAX_ATTEMPTS, got %q", buf.String())
	}
}

func TestNewLoop_RequiresCheck(t *testing.T) {
	r := config.Defaults
	if _, err := newLoop(r, t.TempDir(), terminal.NewLoggerTo(&bytes.Buffer{}), nil); err == nil {
		t.Error("expected error without a check command")
	}
}

func TestNewLoop_UnknownAgent(t *testing.T) {
	r := config.Defaults
	r.Check = "true"
	r.Agent = "nope"
	if _, err := newLoop(r, t.TempDir(), terminal.NewLoggerTo(&bytes.Buffer{}), nil); err == nil {
		t.Error("expected error for unknown agent")
	}
}

func TestPrintConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := terminal.NewLoggerTo(&buf)

	printConfig(logger, config.ResolvedConfig{
		Check:        "make check",
		Agent:        "claude",
		AgentCommand: "./my-agent",
		CommentTag:   "ai",
		Watch:        true,
		MaxAttempts:  4,
	})

	out := buf.String()
	for _, want := range []string{
		"Config loaded:",
		"agent:       ./my-agent",
		"check:       make check",
		"file check:  (none)",
		"tag:         @ai",
		"watch:       true",
		"max attempts: 4",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("printConfig output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "timeout:") {
		t.Errorf("timeout should be omitted when zero:\n%s", out)
	}
}
