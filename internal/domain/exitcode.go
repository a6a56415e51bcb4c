package domain

// ExitCode represents the exit status of hands.
type ExitCode int

const (
	// ExitOK indicates a clean run or a signal-initiated shutdown.
	ExitOK ExitCode = 0
	// ExitError indicates hands failed due to an error (bad config, watcher failure).
	ExitError ExitCode = 2
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
