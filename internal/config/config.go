// Package config handles configuration loading and validation for ysconv.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// DefaultConfigName is the config file looked up in the conversion root when
// no --config flag is given. Its absence is not an error: every field has a
// default and the common case is running with no configuration at all.
const DefaultConfigName = "ysconv.yaml"

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	FileUnreadable  ConfigErrorType = "FILE_UNREADABLE"
	InvalidYAML     ConfigErrorType = "INVALID_YAML"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case FileUnreadable:
		return fmt.Sprintf("cannot read configuration file %s: %s", e.Path, e.Message)
	case InvalidYAML:
		return fmt.Sprintf("invalid YAML in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// JournalConfig controls the conversion journal.
type JournalConfig struct {
	Directory string `yaml:"directory,omitempty"` // relative paths resolve against the root
	Disabled  bool   `yaml:"disabled,omitempty"`
}

// WatchConfig controls the fix-and-rerun watch mode.
type WatchConfig struct {
	DebounceSeconds   int `yaml:"debounceSeconds,omitempty"`
	StableThresholdMs int `yaml:"stableThresholdMs,omitempty"`
}

// Configuration holds all settings for ysconv.
type Configuration struct {
	SymlinkPolicy  string        `yaml:"symlinkPolicy,omitempty"`
	IgnorePatterns []string      `yaml:"ignorePatterns,omitempty"`
	Journal        JournalConfig `yaml:"journal,omitempty"`
	Watch          WatchConfig   `yaml:"watch,omitempty"`
}

// Default returns a fully populated Configuration.
func Default() *Configuration {
	return &Configuration{
		SymlinkPolicy:  "skip",
		IgnorePatterns: []string{".git", ".ysconv", ".DS_Store", "*.bak"},
		Journal: JournalConfig{
			Directory: ".ysconv",
		},
		Watch: WatchConfig{
			DebounceSeconds:   2,
			StableThresholdMs: 1000,
		},
	}
}

// ApplyDefaults fills in zero-valued fields with defaults.
func (c *Configuration) ApplyDefaults() {
	defaults := Default()
	if c.SymlinkPolicy == "" {
		c.SymlinkPolicy = defaults.SymlinkPolicy
	}
	if c.IgnorePatterns == nil {
		c.IgnorePatterns = defaults.IgnorePatterns
	}
	if c.Journal.Directory == "" {
		c.Journal.Directory = defaults.Journal.Directory
	}
	if c.Watch.DebounceSeconds == 0 {
		c.Watch.DebounceSeconds = defaults.Watch.DebounceSeconds
	}
	if c.Watch.StableThresholdMs == 0 {
		c.Watch.StableThresholdMs = defaults.Watch.StableThresholdMs
	}
}

// Validate checks that the configuration values are usable.
func (c *Configuration) Validate() error {
	switch c.SymlinkPolicy {
	case "follow", "skip", "error":
	default:
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("symlinkPolicy must be one of follow, skip, error; got %q", c.SymlinkPolicy),
		}
	}
	if c.Watch.DebounceSeconds < 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: "watch.debounceSeconds cannot be negative",
		}
	}
	if c.Watch.StableThresholdMs < 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: "watch.stableThresholdMs cannot be negative",
		}
	}
	return nil
}

// Load reads and parses a configuration file from the given path.
func Load(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
				Err:  err,
			}
		}
		return nil, &ConfigError{
			Type:    FileUnreadable,
			Path:    filePath,
			Message: err.Error(),
			Err:     err,
		}
	}

	var config Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidYAML,
			Message: err.Error(),
		}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadOrDefault loads the config at filePath, falling back to the default
// configuration when the file does not exist. An unreadable or invalid file
// is still an error; silently ignoring it would discard the user's settings.
func LoadOrDefault(filePath string) (*Configuration, error) {
	config, err := Load(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return config, nil
}
