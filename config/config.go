package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/externals/internal/util"
	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultLogLvl is the log level used when none is configured
	DefaultLogLvl = util.InfoLevel

	// DefaultFileMode is the permission for files created by the fspath backend
	DefaultFileMode os.FileMode = 0o644

	// DefaultDirMode is the permission for directories created implicitly
	// when writing below missing ancestors
	DefaultDirMode os.FileMode = 0o755
)

// Verbosity levels accepted by [ConfigOverride.Verbose]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Config contains runtime configuration values.
type Config struct {
	LogLvl   util.LogLevel // Log level (Default Info)
	FileMode os.FileMode   // Permission bits for files written to disk (Default 0644)
	DirMode  os.FileMode   // Permission bits for directories created on disk (Default 0755)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// Verbose is the log verbosity between 1 (error) and 5 (trace); clamped
	Verbose  *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	FileMode *uint32 `yaml:"file_mode,omitempty" json:"file_mode,omitempty"`
	DirMode  *uint32 `yaml:"dir_mode,omitempty" json:"dir_mode,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:   DefaultLogLvl,
		FileMode: DefaultFileMode,
		DirMode:  DefaultDirMode,
	}
}

// NewConfig creates a Config from defaults with override applied on top.
// A nil override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.Verbose != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.Verbose)
	}
	if override.FileMode != nil {
		c.FileMode = os.FileMode(*override.FileMode).Perm()
	}
	if override.DirMode != nil {
		c.DirMode = os.FileMode(*override.DirMode).Perm()
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
