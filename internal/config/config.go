// Package config loads CLI settings from an optional YAML file and
// DRIFTCORE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for the driftcore CLI
type Config struct {
	Limits LimitsConfig `yaml:"limits"`
	Digest DigestConfig `yaml:"digest"`
	Output OutputConfig `yaml:"output"`
	Debug  bool         `yaml:"debug"`
}

// LimitsConfig bounds parser resource use
type LimitsConfig struct {
	MaxDepth       int    `yaml:"max_depth"`
	MaxBytes       int64  `yaml:"max_bytes"`
	OnDuplicateKey string `yaml:"on_duplicate_key"`
}

// Duplicate key policies for limits.on_duplicate_key.
const (
	DuplicateLastWins = "last_wins"
	DuplicateError    = "error"
)

// DigestConfig selects the hash algorithm used by the hash command
type DigestConfig struct {
	Algorithm string `yaml:"algorithm"`
}

// OutputConfig controls how results are printed
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxDepth:       512,
			MaxBytes:       0,
			OnDuplicateKey: DuplicateLastWins,
		},
		Digest: DigestConfig{Algorithm: "sha256"},
		Output: OutputConfig{Format: FormatText},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load returns the defaults, overlaid by the file at path (when non-empty)
// and then by environment variables.
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path != "" {
		fileConfig, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DRIFTCORE_MAX_DEPTH, DRIFTCORE_MAX_BYTES,
// DRIFTCORE_ON_DUPLICATE_KEY, DRIFTCORE_ALGORITHM, DRIFTCORE_FORMAT and
// DRIFTCORE_DEBUG.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("DRIFTCORE_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DRIFTCORE_MAX_DEPTH %q: %w", v, err)
		}
		c.Limits.MaxDepth = n
	}
	if v := getenv("DRIFTCORE_MAX_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DRIFTCORE_MAX_BYTES %q: %w", v, err)
		}
		c.Limits.MaxBytes = n
	}
	c.Limits.OnDuplicateKey = envOr(getenv, "DRIFTCORE_ON_DUPLICATE_KEY", c.Limits.OnDuplicateKey)
	c.Digest.Algorithm = envOr(getenv, "DRIFTCORE_ALGORITHM", c.Digest.Algorithm)
	c.Output.Format = envOr(getenv, "DRIFTCORE_FORMAT", c.Output.Format)
	if v := getenv("DRIFTCORE_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DRIFTCORE_DEBUG %q: %w", v, err)
		}
		c.Debug = b
	}
	return c.Validate()
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Digest.Algorithm) {
	case "", "sha256", "blake3":
	default:
		return fmt.Errorf("unsupported digest algorithm %q", c.Digest.Algorithm)
	}
	switch c.Output.Format {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	switch c.Limits.OnDuplicateKey {
	case "", DuplicateLastWins, DuplicateError:
	default:
		return fmt.Errorf("unsupported limits.on_duplicate_key %q (want %s or %s)", c.Limits.OnDuplicateKey, DuplicateLastWins, DuplicateError)
	}
	if c.Limits.MaxBytes < 0 {
		return fmt.Errorf("limits.max_bytes must not be negative")
	}
	return nil
}

// StrictDuplicates reports whether repeated object keys are rejected.
func (c *Config) StrictDuplicates() bool {
	return c.Limits.OnDuplicateKey == DuplicateError
}

// FindConfigFile searches for a config file in the current directory and its parents
func FindConfigFile() string {
	configNames := []string{".driftcore.yml", ".driftcore.yaml", "driftcore.yml", "driftcore.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}
	return ""
}
