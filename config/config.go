// Copyright 2026 The ResearchAgent Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the ResearchAgent
// client.
//
// Configuration is loaded from a single YAML file specified by:
//   - RESEARCHAGENT_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no fallback discovery. A missing config file is not an
// error: every field has a working default, and a client pointed at a
// local backend needs no file at all. When a file is named, it is the
// single source of truth; environment variables do not override its
// values. The only expansion performed is ${VAR} and ${VAR:-default}
// in path fields for portability.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable that points at the config
// file.
const EnvVar = "RESEARCHAGENT_CONFIG"

// Config is the client configuration.
type Config struct {
	// Server configures the backend connection.
	Server ServerConfig `yaml:"server"`

	// Defaults configures per-request defaults.
	Defaults DefaultsConfig `yaml:"defaults"`

	// SessionFile overrides the login session file location. Empty
	// selects $RESEARCHAGENT_SESSION_FILE or the user config directory.
	SessionFile string `yaml:"session_file"`

	// UI configures terminal rendering.
	UI UIConfig `yaml:"ui"`
}

// ServerConfig configures the backend connection.
type ServerConfig struct {
	// BaseURL is the backend base address.
	// Default: http://localhost:8000
	BaseURL string `yaml:"base_url"`
}

// DefaultsConfig configures per-request defaults. These apply when the
// corresponding command-line flag is not given.
type DefaultsConfig struct {
	// Model is the LLM used for analysis runs.
	// Default: gpt-4-turbo-preview
	Model string `yaml:"model"`

	// Temperature is the sampling temperature for analysis runs.
	// Default: 0.7
	Temperature float64 `yaml:"temperature"`

	// WorkflowType selects the multi-agent workflow variant.
	// Default: standard
	WorkflowType string `yaml:"workflow_type"`

	// MaxResults is the paper count for arXiv searches. The backend
	// supports 2 through 20.
	// Default: 10
	MaxResults int `yaml:"max_results"`
}

// UIConfig configures terminal rendering.
type UIConfig struct {
	// Color selects the color mode: "auto", "always", or "never".
	// Default: auto
	Color string `yaml:"color"`
}

// Default returns the default configuration, used as the base before
// loading a config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000",
		},
		Defaults: DefaultsConfig{
			Model:        "gpt-4-turbo-preview",
			Temperature:  0.7,
			WorkflowType: "standard",
			MaxResults:   10,
		},
		UI: UIConfig{
			Color: "auto",
		},
	}
}

// Load loads configuration from RESEARCHAGENT_CONFIG. When the
// variable is unset, the defaults are returned as-is.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.SessionFile = expandVars(c.SessionFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.BaseURL == "" {
		errs = append(errs, fmt.Errorf("server.base_url is required"))
	}

	if c.Defaults.Temperature < 0 || c.Defaults.Temperature > 2 {
		errs = append(errs, fmt.Errorf("defaults.temperature must be between 0 and 2"))
	}

	if c.Defaults.MaxResults < 2 || c.Defaults.MaxResults > 20 {
		errs = append(errs, fmt.Errorf("defaults.max_results must be between 2 and 20"))
	}

	colorValues := []string{"auto", "always", "never"}
	valid := false
	for _, v := range colorValues {
		if c.UI.Color == v {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("ui.color must be one of: %v", colorValues))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
