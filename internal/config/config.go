package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configurable autocommit settings. The minute fields are
// pointers so a layer can distinguish "not set" (nil, falls through in Merge)
// from an explicit zero, which is a real setting: a zero threshold flushes on
// the first cycle that sees a pending change.
type Config struct {
	RepoPath         string `json:"repo_path"`
	AuthorName       string `json:"author_name"`
	AuthorEmail      string `json:"author_email"`
	IntervalMinutes  *int   `json:"check_interval_minutes"`
	ThresholdMinutes *int   `json:"inactivity_threshold_minutes"`
	LogLevel         string `json:"log_level"` // debug, info, warn, error
}

// Interval returns the polling interval of a merged configuration.
func (c Config) Interval() time.Duration {
	return time.Duration(*c.IntervalMinutes) * time.Minute
}

// Threshold returns the inactivity threshold of a merged configuration.
func (c Config) Threshold() time.Duration {
	return time.Duration(*c.ThresholdMinutes) * time.Minute
}

// Defaults returns sensible default configuration values.
// AuthorName and AuthorEmail have no default; Validate rejects their absence.
func Defaults() Config {
	interval, threshold := 5, 60
	return Config{
		RepoPath:         "/repo",
		IntervalMinutes:  &interval,
		ThresholdMinutes: &threshold,
		LogLevel:         "info",
	}
}

// LoadGlobal reads ~/.config/autocommit/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "autocommit", "config.json")
	return loadFile(path, true)
}

// LoadRepo reads .autocommitrc inside the monitored repository.
// Returns nil (no error) if the file is absent.
func LoadRepo(repoPath string) (*Config, error) {
	return loadFile(filepath.Join(repoPath, ".autocommitrc"), false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// FromEnv reads the environment variables understood by autocommit.
// Unset variables leave the corresponding field at its zero value so Merge
// can fall back to file values. Malformed numeric values are a ValidationError.
func FromEnv() (*Config, error) {
	cfg := &Config{
		RepoPath:    os.Getenv("REPO_PATH"),
		AuthorName:  os.Getenv("AUTHOR_NAME"),
		AuthorEmail: os.Getenv("AUTHOR_EMAIL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	var err error
	if cfg.IntervalMinutes, err = envMinutes("CHECK_INTERVAL_MINUTES"); err != nil {
		return nil, err
	}
	if cfg.ThresholdMinutes, err = envMinutes("INACTIVITY_THRESHOLD_MINUTES"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envMinutes parses an optional non-negative integer environment variable.
// Returns nil when the variable is unset so Merge falls through to file
// values; an explicit "0" is preserved as a set value.
func envMinutes(key string) (*int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, &ValidationError{Field: key, Reason: fmt.Sprintf("must be a non-negative integer, got %q", raw)}
	}
	return &n, nil
}

// Merge combines configs in increasing precedence: defaults first, then each
// layer in order. Unset values in a layer (empty strings, nil minute fields)
// fall through to the previous one; an explicit zero in a minute field wins.
func Merge(layers ...*Config) Config {
	result := Defaults()
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if layer.RepoPath != "" {
			result.RepoPath = layer.RepoPath
		}
		if layer.AuthorName != "" {
			result.AuthorName = layer.AuthorName
		}
		if layer.AuthorEmail != "" {
			result.AuthorEmail = layer.AuthorEmail
		}
		if layer.IntervalMinutes != nil {
			result.IntervalMinutes = layer.IntervalMinutes
		}
		if layer.ThresholdMinutes != nil {
			result.ThresholdMinutes = layer.ThresholdMinutes
		}
		if layer.LogLevel != "" {
			result.LogLevel = layer.LogLevel
		}
	}
	return result
}

// Validate checks that the merged configuration is complete enough to start
// the daemon. Author identity is required; everything else has a default.
func (c Config) Validate() error {
	if c.AuthorName == "" {
		return &ValidationError{Field: "AUTHOR_NAME", Reason: "is required"}
	}
	if c.AuthorEmail == "" {
		return &ValidationError{Field: "AUTHOR_EMAIL", Reason: "is required"}
	}
	if c.RepoPath == "" {
		return &ValidationError{Field: "REPO_PATH", Reason: "is required"}
	}
	if c.IntervalMinutes == nil || *c.IntervalMinutes < 0 {
		return &ValidationError{Field: "CHECK_INTERVAL_MINUTES", Reason: "must be a non-negative integer"}
	}
	if c.ThresholdMinutes == nil || *c.ThresholdMinutes < 0 {
		return &ValidationError{Field: "INACTIVITY_THRESHOLD_MINUTES", Reason: "must be a non-negative integer"}
	}
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when the merged configuration is unusable.
// It is fatal: the process refuses to enter the monitor loop.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + e.Field + " " + e.Reason
}
