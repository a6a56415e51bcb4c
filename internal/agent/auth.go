package agent

import (
	"regexp"
	"strings"
)

// authStderrPatterns contains substrings that indicate authentication failure
// when found in stderr output (checked case-insensitively).
var authStderrPatterns = []string{
	"api_key",
	"api key",
	"unauthorized",
	"authentication required",
	"invalid credentials",
	"not logged in",
}

// authStatusPattern matches a bare HTTP 401 status, not digits inside ports or ids.
var authStatusPattern = regexp.MustCompile(`(^|[^\w:])401([^\w]|$)`)

// authHints maps agent names to actionable error messages shown on auth failure.
var authHints = map[string]string{
	"claude": "Run 'claude login' or check your API key configuration.",
	"codex":  "Set OPENAI_API_KEY or run 'codex login' to authenticate.",
}

// IsAuthFailure returns true if the given exit code and stderr indicate
// an authentication failure. Exit code 0 is never considered an auth failure.
func IsAuthFailure(exitCode int, stderr string) bool {
	if exitCode == 0 {
		return false
	}

	lower := strings.ToLower(stderr)
	for _, pattern := range authStderrPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}

	return authStatusPattern.MatchString(lower)
}

// AuthHint returns an actionable error message for the named agent.
// Returns a generic hint for unknown agents.
func AuthHint(agentName string) string {
	if hint, ok := authHints[agentName]; ok {
		return hint
	}
	return "Check your authentication configuration for " + agentName + "."
}
