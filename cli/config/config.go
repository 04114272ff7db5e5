// Package config provides configuration management for the foundation CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AshkanYarmoradi/go-foundation/codec"
)

// Config represents the foundation CLI configuration
type Config struct {
	// Version of the config file format
	Version string `yaml:"version"`

	// Project configuration
	Project ProjectConfig `yaml:"project"`

	// Generation configuration
	Generation GenerationConfig `yaml:"generation"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	// Name of the project, also the service name of traces and metrics
	Name string `yaml:"name"`

	// Module is the Go module path
	Module string `yaml:"module"`

	// SourceDir is the module root, relative to the config file
	SourceDir string `yaml:"source_dir"`
}

// GenerationConfig contains code generation settings
type GenerationConfig struct {
	// Settings is the settings bundle produced by contract discovery
	Settings string `yaml:"settings"`

	// DefaultCodec encodes contracts that declare no codec
	DefaultCodec string `yaml:"default_codec"`

	// MockableBuses enables the generated bus test doubles
	MockableBuses bool `yaml:"mockable_buses"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level"`

	// Format is console or json
	Format string `yaml:"format"`
}

// Log levels and formats accepted by the CLI logger.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"console", "json"}
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Project: ProjectConfig{
			Name:      "my-foundation-app",
			Module:    "github.com/user/my-foundation-app",
			SourceDir: ".",
		},
		Generation: GenerationConfig{
			Settings:      "foundation.settings.yaml",
			DefaultCodec:  codec.NameJSON,
			MockableBuses: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigFileName is the default config file name
const ConfigFileName = "foundation.yaml"

// Load loads configuration from the specified directory
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
// Missing keys keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified directory
func (c *Config) Save(dir string) error {
	path := filepath.Join(dir, ConfigFileName)
	return c.SaveFile(path)
}

// SaveFile saves the configuration to a specific file path
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Exists checks if a config file exists in the directory
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindConfig searches for a config file starting from dir and going up
func FindConfig(dir string) (string, *Config, error) {
	current := dir
	for {
		configPath := filepath.Join(current, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err := LoadFile(configPath)
			if err != nil {
				return "", nil, err
			}
			return current, cfg, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root, config not found
			return "", nil, os.ErrNotExist
		}
		current = parent
	}
}

// SettingsPath returns the settings bundle path relative to the config directory.
func (c *Config) SettingsPath(dir string) string {
	if filepath.IsAbs(c.Generation.Settings) {
		return c.Generation.Settings
	}
	return filepath.Join(dir, c.Generation.Settings)
}

// OutputRoot returns the directory generated paths are relative to.
func (c *Config) OutputRoot(dir string) string {
	if filepath.IsAbs(c.Project.SourceDir) {
		return c.Project.SourceDir
	}
	return filepath.Join(dir, c.Project.SourceDir)
}

// Validate validates the configuration
func (c *Config) Validate() []string {
	var errors []string

	if c.Project.Name == "" {
		errors = append(errors, "project.name is required")
	}

	if c.Project.Module == "" {
		errors = append(errors, "project.module is required")
	}

	if c.Generation.Settings == "" {
		errors = append(errors, "generation.settings is required")
	}

	if _, ok := codec.Lookup(c.Generation.DefaultCodec); !ok {
		errors = append(errors, fmt.Sprintf("generation.default_codec must be one of: %s", strings.Join(codec.Names(), ", ")))
	}

	if !contains(LogLevels, c.Logging.Level) {
		errors = append(errors, fmt.Sprintf("logging.level must be one of: %s", strings.Join(LogLevels, ", ")))
	}

	if !contains(LogFormats, c.Logging.Format) {
		errors = append(errors, "logging.format must be 'console' or 'json'")
	}

	return errors
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// GenerateYAML generates YAML content with comments
func GenerateYAML(cfg *Config) string {
	return `# Foundation Configuration File
# This file configures the foundation CLI and code generation

version: "1"

# Project settings
project:
  # Name of your project
  name: "` + cfg.Project.Name + `"

  # Go module path (from go.mod)
  module: "` + cfg.Project.Module + `"

  # Module root relative to this file
  source_dir: "` + cfg.Project.SourceDir + `"

# Code generation
generation:
  # Settings bundle (contracts, handlers, messaging, events)
  settings: "` + cfg.Generation.Settings + `"

  # Codec of contracts without one: json, msgpack or protojson
  default_codec: "` + cfg.Generation.DefaultCodec + `"

  # Generate Mockable<Bus> test doubles
  mockable_buses: ` + fmt.Sprintf("%t", cfg.Generation.MockableBuses) + `

# CLI logging
logging:
  # debug, info, warn or error
  level: "` + cfg.Logging.Level + `"

  # console or json
  format: "` + cfg.Logging.Format + `"
`
}
