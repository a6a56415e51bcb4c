package agent

import (
	"fmt"
	"strings"
)

// ExitError is returned when an agent process exits nonzero.
type ExitError struct {
	Agent  string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("agent %s exited with code %d", e.Agent, e.Code)
	if IsAuthFailure(e.Code, e.Stderr) {
		return msg + ": " + AuthHint(e.Agent)
	}
	if tail := lastLine(e.Stderr); tail != "" {
		return msg + ": " + tail
	}
	return msg
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
