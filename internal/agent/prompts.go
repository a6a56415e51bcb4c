package agent

import (
	"fmt"

	"github.com/richhaase/hands/internal/domain"
)

// instructionPrompt is the first prompt sent for a tagged comment.
// Arguments: trigger, file path, line, context.
const instructionPrompt = `
Please address comment around "%s" by implementing or fixing the code base.

<important>
- Don't run any builds, checks, lints, tests or typechecks yourself. I will do that once you are done with the change.
- Remove the comment once you are done.
- Summarize in a single sentence what you did.
</important>

<comment>
%s:%d:
%s
</comment>
`

// refFilePrompt replaces a prompt too large to pipe. Argument: absolute path.
const refFilePrompt = `Your instructions are too long to include here. They are in file: %s
Read that file in full and follow the instructions it contains. Do not modify or delete it.`

// BuildPrompt returns the instruction prompt for comment.
func BuildPrompt(trigger string, comment domain.TaggedComment) string {
	return fmt.Sprintf(instructionPrompt, trigger, comment.Filepath, comment.Line, comment.Context)
}

// BuildRefFilePrompt returns the stdin prompt pointing the agent at a reference file.
func BuildRefFilePrompt(path string) string {
	return fmt.Sprintf(refFilePrompt, path)
}
