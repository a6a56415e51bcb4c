package agent

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// RefFileSizeThreshold is the prompt size (in bytes) above which the prompt is
// written to a file the agent is told to read, instead of being piped whole.
// Check transcripts from large builds can easily exceed what agent CLIs accept
// on stdin.
const RefFileSizeThreshold = 100 * 1024 // 100KB

// RefFilePrefix starts the name of every reference file so watchers can skip them.
const RefFilePrefix = ".hands-"

// GetWorkDir returns the working directory to use for temp files.
// If workDir is non-empty, returns it. Otherwise returns os.Getwd().
func GetWorkDir(workDir string) (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// WritePromptToTempFile writes prompt to .hands-prompt-<uuid>.md in the working
// directory so sandboxed agent tools can read it. Returns the absolute path.
// The caller is responsible for cleaning up the file (use CleanupTempFile).
func WritePromptToTempFile(workDir, prompt string) (string, error) {
	wd, err := GetWorkDir(workDir)
	if err != nil {
		return "", err
	}

	tempPath := filepath.Join(wd, fmt.Sprintf("%sprompt-%s.md", RefFilePrefix, uuid.New().String()))
	if err := os.WriteFile(tempPath, []byte(prompt), 0600); err != nil {
		return "", fmt.Errorf("failed to write prompt to temp file: %w", err)
	}

	absPath, err := filepath.Abs(tempPath)
	if err != nil {
		if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			fmt.Fprintf(os.Stderr, "Warning: failed to clean up temp file %s during error handling: %v\n", tempPath, rmErr)
		}
		return "", fmt.Errorf("failed to get absolute path for temp file: %w", err)
	}

	return absPath, nil
}

// CleanupTempFile removes a temporary file. If removal fails, it logs a warning
// but does not return an error since cleanup failures are non-fatal.
func CleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to clean up temp file %s: %v\n", path, err)
	}
}

// preparePrompt returns the stdin for an agent run. Prompts over
// RefFileSizeThreshold are moved to a reference file; the returned path is
// non-empty in that case and must be cleaned up by the caller.
func preparePrompt(workDir, prompt string) (stdin string, tempFilePath string, err error) {
	if len(prompt) <= RefFileSizeThreshold {
		return prompt, "", nil
	}
	path, err := WritePromptToTempFile(workDir, prompt)
	if err != nil {
		return "", "", err
	}
	return BuildRefFilePrompt(path), path, nil
}
