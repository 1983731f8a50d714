package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultExtensions is the allow-list used when none is configured.
var DefaultExtensions = []string{".py", ".js", ".ts", ".java", ".cpp", ".c", ".cs"}

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	Provider    string        `yaml:"provider"` // openai (default) or azure
	Model       string        `yaml:"model,omitempty"`
	BaseURL     string        `yaml:"base_url,omitempty"` // azure: resource endpoint
	APIKey      string        `yaml:"api_key,omitempty"`  // literal or "env:VAR_NAME"
	Deployment  string        `yaml:"deployment,omitempty"`
	APIVersion  string        `yaml:"api_version,omitempty"`
	Temperature *float64      `yaml:"temperature,omitempty"`
	MaxTokens   int           `yaml:"max_tokens,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`

	Extensions []string `yaml:"extensions,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"` // gitignore-style patterns

	Output  string `yaml:"output,omitempty"`
	Format  string `yaml:"format,omitempty"`  // text, json, sarif
	History string `yaml:"history,omitempty"` // sqlite path; empty disables run history

	Watch *WatchConfig `yaml:"watch,omitempty"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &s, nil
}

// AllowedExtensions returns the configured allow-list or the default one.
func (s *Settings) AllowedExtensions() []string {
	if len(s.Extensions) > 0 {
		return s.Extensions
	}
	return DefaultExtensions
}
