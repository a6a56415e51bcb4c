// Package config provides configuration file support for hands.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/richhaase/hands/internal/agent"
	"github.com/richhaase/hands/internal/comment"
	"github.com/richhaase/hands/internal/coordinator"
	"github.com/richhaase/hands/internal/git"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".hands.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("5m", "300s") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := parseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v * float64(time.Second)))
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

// Config represents the hands configuration file.
type Config struct {
	Check           *string   `yaml:"check"`
	FileCheck       *string   `yaml:"file_check"`
	Agent           *string   `yaml:"agent"`
	AgentCommand    *string   `yaml:"agent_command"`
	CommentTag      *string   `yaml:"comment_tag"`
	Watch           *bool     `yaml:"watch"`
	MaxAttempts     *int      `yaml:"max_attempts"`
	Timeout         *Duration `yaml:"timeout"`
	QueueSize       *int      `yaml:"queue_size"`
	ExcludePatterns []string  `yaml:"exclude_patterns"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Path     string
	Warnings []string
}

// ConfigDir returns the directory holding the config file: the git root of
// dir, or dir itself outside a repository.
func ConfigDir(ctx context.Context, dir string) string {
	if root, err := git.GetRoot(ctx, dir); err == nil {
		return root
	}
	return dir
}

// LoadWithWarnings reads .hands.yaml from the git root of the current
// directory, or the current directory outside a repository.
func LoadWithWarnings(ctx context.Context) (*LoadResult, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFromDirWithWarnings(ConfigDir(ctx, cwd))
}

// LoadFromDirWithWarnings reads .hands.yaml from the specified directory.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	return LoadFromPathWithWarnings(filepath.Join(dir, ConfigFileName))
}

// LoadFromPathWithWarnings reads a config file and returns warnings for unknown keys.
// Returns an empty config (not error) if the file doesn't exist.
// Returns an error if the file exists but is invalid YAML or holds invalid values.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}, Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Path: path, Warnings: warnings}, nil
}

// LoadDotEnv loads dir/.env into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// knownTopLevelKeys are the valid top-level keys in the config file.
var knownTopLevelKeys = []string{
	"check", "file_check", "agent", "agent_command", "comment_tag",
	"watch", "max_attempts", "timeout", "queue_size", "exclude_patterns",
}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error
		return nil
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if !slices.Contains(knownTopLevelKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownTopLevelKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Merge combines config file exclude patterns with CLI patterns.
// CLI patterns are appended after config patterns (both are applied).
func Merge(cfg *Config, cliPatterns []string) []string {
	if cfg == nil {
		return cliPatterns
	}
	return append(slices.Clone(cfg.ExcludePatterns), cliPatterns...)
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Agent != nil && !slices.Contains(agent.SupportedAgents, *c.Agent) {
		return fmt.Errorf("agent must be one of %v, got %q", agent.SupportedAgents, *c.Agent)
	}
	if c.CommentTag != nil {
		if err := validateTag(*c.CommentTag); err != nil {
			return fmt.Errorf("comment_tag %w", err)
		}
	}
	if c.MaxAttempts != nil && *c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", *c.MaxAttempts)
	}
	if c.Timeout != nil && *c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", time.Duration(*c.Timeout))
	}
	if c.QueueSize != nil && *c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be >= 1, got %d", *c.QueueSize)
	}
	return validatePatterns(c.ExcludePatterns)
}

func validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("must not be empty")
	}
	if strings.ContainsAny(tag, " \t\n") {
		return fmt.Errorf("must not contain whitespace, got %q", tag)
	}
	return nil
}

// validatePatterns checks that all exclude patterns are valid globs.
func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Agent:      agent.DefaultAgent,
	CommentTag: comment.DefaultTrigger,
	Watch:      true,
	QueueSize:  coordinator.DefaultQueueSize,
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Check        string
	FileCheck    string
	Agent        string
	AgentCommand string
	CommentTag   string
	Watch        bool
	MaxAttempts  int
	Timeout      time.Duration
	QueueSize    int
}

// Validate checks the resolved values, including the required check command.
func (r ResolvedConfig) Validate() error {
	if strings.TrimSpace(r.Check) == "" {
		return fmt.Errorf("a check command is required (set check in %s, HANDS_CHECK, or --check)", ConfigFileName)
	}
	if r.AgentCommand == "" && !slices.Contains(agent.SupportedAgents, r.Agent) {
		return fmt.Errorf("agent must be one of %v, got %q", agent.SupportedAgents, r.Agent)
	}
	if err := validateTag(r.CommentTag); err != nil {
		return fmt.Errorf("comment tag %w", err)
	}
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max attempts must be >= 0, got %d", r.MaxAttempts)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", r.Timeout)
	}
	if r.QueueSize < 1 {
		return fmt.Errorf("queue size must be >= 1, got %d", r.QueueSize)
	}
	return nil
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	CheckSet        bool
	FileCheckSet    bool
	AgentSet        bool
	AgentCommandSet bool
	CommentTagSet   bool
	WatchSet        bool
	MaxAttemptsSet  bool
	TimeoutSet      bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Check           string
	CheckSet        bool
	FileCheck       string
	FileCheckSet    bool
	Agent           string
	AgentSet        bool
	AgentCommand    string
	AgentCommandSet bool
	CommentTag      string
	CommentTagSet   bool
	Watch           bool
	WatchSet        bool
	MaxAttempts     int
	MaxAttemptsSet  bool
	Timeout         time.Duration
	TimeoutSet      bool
	QueueSize       int
	QueueSizeSet    bool
}

// LoadEnvState reads HANDS_* environment variables. Values that cannot be
// parsed are skipped and reported as warnings.
func LoadEnvState() (EnvState, []string) {
	var state EnvState
	var warnings []string

	invalid := func(name, v string) {
		warnings = append(warnings, fmt.Sprintf("ignoring %s=%q: invalid value", name, v))
	}

	if v := os.Getenv("HANDS_CHECK"); v != "" {
		state.Check = v
		state.CheckSet = true
	}
	if v := os.Getenv("HANDS_FILE_CHECK"); v != "" {
		state.FileCheck = v
		state.FileCheckSet = true
	}
	if v := os.Getenv("HANDS_AGENT"); v != "" {
		state.Agent = v
		state.AgentSet = true
	}
	if v := os.Getenv("HANDS_AGENT_COMMAND"); v != "" {
		state.AgentCommand = v
		state.AgentCommandSet = true
	}
	if v := os.Getenv("HANDS_COMMENT_TAG"); v != "" {
		state.CommentTag = v
		state.CommentTagSet = true
	}
	if v := os.Getenv("HANDS_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			state.Watch = b
			state.WatchSet = true
		} else {
			invalid("HANDS_WATCH", v)
		}
	}
	if v := os.Getenv("HANDS_MAX_ATTEMPTS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			state.MaxAttempts = i
			state.MaxAttemptsSet = true
		} else {
			invalid("HANDS_MAX_ATTEMPTS", v)
		}
	}
	if v := os.Getenv("HANDS_TIMEOUT"); v != "" {
		if d, err := parseDuration(v); err == nil && d >= 0 {
			state.Timeout = d
			state.TimeoutSet = true
		} else {
			invalid("HANDS_TIMEOUT", v)
		}
	}
	if v := os.Getenv("HANDS_QUEUE_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 1 {
			state.QueueSize = i
			state.QueueSizeSet = true
		} else {
			invalid("HANDS_QUEUE_SIZE", v)
		}
	}

	return state, warnings
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	if cfg != nil {
		if cfg.Check != nil {
			result.Check = *cfg.Check
		}
		if cfg.FileCheck != nil {
			result.FileCheck = *cfg.FileCheck
		}
		if cfg.Agent != nil {
			result.Agent = *cfg.Agent
		}
		if cfg.AgentCommand != nil {
			result.AgentCommand = *cfg.AgentCommand
		}
		if cfg.CommentTag != nil {
			result.CommentTag = *cfg.CommentTag
		}
		if cfg.Watch != nil {
			result.Watch = *cfg.Watch
		}
		if cfg.MaxAttempts != nil {
			result.MaxAttempts = *cfg.MaxAttempts
		}
		if cfg.Timeout != nil {
			result.Timeout = cfg.Timeout.AsDuration()
		}
		if cfg.QueueSize != nil {
			result.QueueSize = *cfg.QueueSize
		}
	}

	if envState.CheckSet {
		result.Check = envState.Check
	}
	if envState.FileCheckSet {
		result.FileCheck = envState.FileCheck
	}
	if envState.AgentSet {
		result.Agent = envState.Agent
	}
	if envState.AgentCommandSet {
		result.AgentCommand = envState.AgentCommand
	}
	if envState.CommentTagSet {
		result.CommentTag = envState.CommentTag
	}
	if envState.WatchSet {
		result.Watch = envState.Watch
	}
	if envState.MaxAttemptsSet {
		result.MaxAttempts = envState.MaxAttempts
	}
	if envState.TimeoutSet {
		result.Timeout = envState.Timeout
	}
	if envState.QueueSizeSet {
		result.QueueSize = envState.QueueSize
	}

	if flagState.CheckSet {
		result.Check = flagValues.Check
	}
	if flagState.FileCheckSet {
		result.FileCheck = flagValues.FileCheck
	}
	if flagState.AgentSet {
		result.Agent = flagValues.Agent
	}
	if flagState.AgentCommandSet {
		result.AgentCommand = flagValues.AgentCommand
	}
	if flagState.CommentTagSet {
		result.CommentTag = flagValues.CommentTag
	}
	if flagState.WatchSet {
		result.Watch = flagValues.Watch
	}
	if flagState.MaxAttemptsSet {
		result.MaxAttempts = flagValues.MaxAttempts
	}
	if flagState.TimeoutSet {
		result.Timeout = flagValues.Timeout
	}

	return result
}
