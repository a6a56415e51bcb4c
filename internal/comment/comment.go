// Package comment extracts trigger-tagged line comments from source files.
package comment

import (
	"regexp"
	"strings"

	"github.com/richhaase/hands/internal/domain"
)

// DefaultTrigger is the tag used when none is configured.
const DefaultTrigger = "ai"

// contextRadius is the number of lines kept on each side of a tag line.
const contextRadius = 5

// IgnoreMarker disables extraction for a whole file when it appears in a
// comment on the first line.
const IgnoreMarker = "hands-please-ignore"

// ignorePatterns recognize IgnoreMarker in each supported comment dialect.
var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`//\s*` + IgnoreMarker),               // C, Go, JS
	regexp.MustCompile(`/\*\s*` + IgnoreMarker + `\s*\*/`),   // block comment
	regexp.MustCompile(`<!--\s*` + IgnoreMarker + `\s*-->`),  // HTML, XML
	regexp.MustCompile(`#\s*` + IgnoreMarker),                // shell, Python, Ruby
	regexp.MustCompile(`'''\s*` + IgnoreMarker),              // Python docstring
	regexp.MustCompile(`"""\s*` + IgnoreMarker),              // Python docstring
	regexp.MustCompile(`--\s*` + IgnoreMarker),               // SQL, Lua
	regexp.MustCompile(`\*\s*` + IgnoreMarker),               // inside a block comment
	regexp.MustCompile(`<%--\s*` + IgnoreMarker + `\s*--%>`), // JSP
	regexp.MustCompile(`\(\*\s*` + IgnoreMarker + `\s*\*\)`), // OCaml, Pascal
}

var continuationPattern = regexp.MustCompile(`//\s*(.*)`)

// Extract returns the comments tagged with "@" + trigger in file order.
// It never fails: content without tags, or with an opt-out marker on the
// first line, yields an empty slice.
func Extract(filepath, content, trigger string) []domain.TaggedComment {
	if trigger == "" {
		trigger = DefaultTrigger
	}
	tag := "@" + trigger

	if IsIgnored(content, trigger) {
		return []domain.TaggedComment{}
	}

	tagPattern := regexp.MustCompile(`//\s*` + regexp.QuoteMeta(tag) + `(?:\s+(.+)|$)`)
	lines := strings.Split(content, "\n")
	comments := []domain.TaggedComment{}

	for i, line := range lines {
		match := tagPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		text := strings.TrimSpace(match[1])
		for next := i + 1; next < len(lines); next++ {
			trimmed := strings.TrimSpace(lines[next])
			if !strings.HasPrefix(trimmed, "//") || strings.Contains(lines[next], tag) {
				break
			}
			if cont := continuationPattern.FindStringSubmatch(trimmed); cont != nil {
				if part := strings.TrimSpace(cont[1]); part != "" {
					text += "\n" + part
				}
			}
		}

		comments = append(comments, domain.TaggedComment{
			Filepath: filepath,
			Line:     i,
			Comment:  text,
			Context:  window(lines, i),
		})
	}

	return comments
}

// IsIgnored reports whether the first line of content opts the file out of
// extraction, either with IgnoreMarker or with a "// @<trigger> ignore" tag.
func IsIgnored(content, trigger string) bool {
	if strings.HasPrefix(content, "// @"+trigger+" ignore") {
		return true
	}
	firstLine, _, _ := strings.Cut(content, "\n")
	firstLine = strings.TrimSpace(firstLine)
	for _, p := range ignorePatterns {
		if p.MatchString(firstLine) {
			return true
		}
	}
	return false
}

// window returns the lines within contextRadius of index, clamped to the file.
func window(lines []string, index int) string {
	start := max(0, index-contextRadius)
	end := min(len(lines), index+contextRadius+1)
	return strings.Join(lines[start:end], "\n")
}
