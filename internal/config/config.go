// Package config loads the slvcodec tool configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benreynwar/slvcodec/internal/typs"
)

// Config is the top-level configuration for the slvcodec tool.
type Config struct {
	// Declarations lists declaration table files loaded before the ones
	// given on the command line, for shared packages.
	Declarations []string `json:"declarations,omitempty"`

	// Strict makes unresolvable constants, types and ports fatal instead
	// of dropped. Defaults to true.
	Strict *bool `json:"strict,omitempty"`

	// PolicyDir holds extra .rego rule files evaluated alongside the
	// builtin design checks.
	PolicyDir string `json:"policyDir,omitempty"`

	// ClockNames lists the port names excluded from the codec as clocks.
	// Defaults to clk and clock.
	ClockNames []string `json:"clockNames,omitempty"`

	// Generics supplies per-entity generic values, keyed by entity name.
	Generics map[string]map[string]int `json:"generics,omitempty"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Strict:     boolPtr(true),
		ClockNames: []string{"clk", "clock"},
		Generics:   map[string]map[string]int{},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file.
// Search order:
//  1. ./slvcodec.json
//  2. ./.slvcodec.json
//  3. <rootPath>/slvcodec.json and .slvcodec.json (if different from cwd)
//  4. ~/.config/slvcodec/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "slvcodec.json"),
		filepath.Join(cwd, ".slvcodec.json"),
	}
	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "slvcodec.json"),
				filepath.Join(rootPath, ".slvcodec.json"),
			)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "slvcodec", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Strict == nil {
		c.Strict = boolPtr(true)
	}
	if len(c.ClockNames) == 0 {
		c.ClockNames = []string{"clk", "clock"}
	}
	if c.Generics == nil {
		c.Generics = map[string]map[string]int{}
	}
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// IsStrict reports whether unresolvable declarations are fatal.
func (c *Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// GenericsFor returns the configured generic values for an entity.
func (c *Config) GenericsFor(entity string) typs.Generics {
	values := c.Generics[entity]
	if len(values) == 0 {
		return nil
	}
	generics := make(typs.Generics, len(values))
	for name, v := range values {
		generics[name] = v
	}
	return generics
}
