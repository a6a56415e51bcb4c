// Package ignore decides which paths the watcher skips: built-in directories,
// configured exclude globs, and the nearest .gitignore.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/richhaase/hands/internal/git"
)

// BuiltinPatterns are always excluded. Each pattern is matched against every
// path segment as well as the whole relative path.
var BuiltinPatterns = []string{
	".git",
	"node_modules",
	"dist",
	"build",
	"coverage",
	".env",
	".hands-*",
}

// Matcher holds compiled ignore rules for a watched root.
type Matcher struct {
	root         string
	globs        []glob.Glob
	gitignore    *gitignore.GitIgnore
	gitignoreDir string
}

// New compiles the built-in patterns plus patterns for root, and loads the
// .gitignore nearest to root, searching upward.
// Returns an error if any pattern is an invalid glob.
func New(root string, patterns []string) (*Matcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	m := &Matcher{root: absRoot}
	for _, p := range append(append([]string{}, BuiltinPatterns...), patterns...) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}

	path, err := git.FindUp(absRoot, ".gitignore")
	if err != nil {
		return nil, err
	}
	if path != "" {
		gi, err := gitignore.CompileIgnoreFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		m.gitignore = gi
		m.gitignoreDir = filepath.Dir(path)
	}
	return m, nil
}

// GitignorePath returns the .gitignore in use, or "".
func (m *Matcher) GitignorePath() string {
	if m.gitignore == nil {
		return ""
	}
	return filepath.Join(m.gitignoreDir, ".gitignore")
}

// Ignored reports whether path should be skipped. Relative paths are taken
// relative to the root. The root itself is never ignored.
func (m *Matcher) Ignored(path string, isDir bool) bool {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(m.root, path)
	}

	rel, ok := relSlash(m.root, abs)
	if !ok || rel == "." {
		return false
	}

	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
		for _, seg := range strings.Split(rel, "/") {
			if g.Match(seg) {
				return true
			}
		}
	}

	if m.gitignore != nil {
		if gitRel, ok := relSlash(m.gitignoreDir, abs); ok && gitRel != "." {
			if isDir {
				gitRel += "/"
			}
			if m.gitignore.MatchesPath(gitRel) {
				return true
			}
		}
	}
	return false
}

// relSlash returns target relative to base with forward slashes. ok is false
// when target is outside base.
func relSlash(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
