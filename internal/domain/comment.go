// Package domain provides core types shared across hands packages.
package domain

import "fmt"

// TaggedComment is a trigger-tagged source comment together with the
// surrounding source lines that are handed to the agent.
type TaggedComment struct {
	Filepath string
	// Line is the 0-based index of the tag line (not the continuation lines).
	Line int
	// Comment is the tag text with continuation lines joined by newlines.
	Comment string
	// Context is the raw source window around Line.
	Context string
}

// Location returns "path:line" for status messages.
func (c TaggedComment) Location() string {
	return fmt.Sprintf("%s:%d", c.Filepath, c.Line)
}
