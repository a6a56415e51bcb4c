package agent

import (
	"strings"
	"testing"

	"github.com/richhaase/hands/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	comment := domain.TaggedComment{
		Filepath: "src/f.js",
		Line:     0,
		Comment:  "fix bug",
		Context:  "// @ai fix bug\nfunction f(){}",
	}

	prompt := BuildPrompt("ai", comment)

	wantContains := []string{
		`Please address comment around "ai" by implementing or fixing the code base.`,
		"Remove the comment once you are done.",
		"<comment>\nsrc/f.js:0:\n// @ai fix bug\nfunction f(){}\n</comment>",
		"Don't run any builds, checks, lints, tests or typechecks yourself.",
	}
	for _, want := range wantContains {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q\nGot: %s", want, prompt)
		}
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	comment := domain.TaggedComment{Filepath: "a.go", Line: 4, Context: "x"}
	if BuildPrompt("bot", comment) != BuildPrompt("bot", comment) {
		t.Error("BuildPrompt() should be deterministic")
	}
	if !strings.Contains(BuildPrompt("bot", comment), `"bot"`) {
		t.Error("BuildPrompt() should name the trigger")
	}
}

func TestBuildRefFilePrompt(t *testing.T) {
	prompt := BuildRefFilePrompt("/repo/.hands-prompt-1.md")
	if !strings.Contains(prompt, "/repo/.hands-prompt-1.md") {
		t.Errorf("BuildRefFilePrompt() should contain the path, got %q", prompt)
	}
}
