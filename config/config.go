// Package config loads the optional .dler.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for dler.
type Config struct {
	Registry RegistryConfig `yaml:"registry"`
	Update   UpdateConfig   `yaml:"update"`
	Ignore   []string       `yaml:"ignore"` // package names never auto-updated
}

// RegistryConfig describes the package registry to resolve versions against.
type RegistryConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"` // Inline, ${ENV_VAR}, or file path
}

// UpdateConfig holds default update-policy settings, overridable per run via
// CLI flags.
type UpdateConfig struct {
	Concurrency int    `yaml:"concurrency"`
	AllowMajor  bool   `yaml:"allow_major"`
	SavePrefix  string `yaml:"save_prefix"` // "^", "~", or "exact"
}

// Default returns the built-in configuration: public npm registry, five
// concurrent lookups, major updates allowed, caret save prefix.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{URL: "https://registry.npmjs.org"},
		Update: UpdateConfig{
			Concurrency: 5,
			AllowMajor:  true,
			SavePrefix:  "^",
		},
	}
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file on top of the defaults,
// expanding environment variables and resolving token file paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	cfg := Default()
	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.Registry.Token = resolveToken(cfg.Registry.Token)

	if validateErr := validate(cfg); validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".dler.yaml",
		".dler.yml",
		"dler.yaml",
		"dler.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// NormalizeSavePrefix maps the user-facing save-prefix spelling to the prefix
// string prepended to new specifiers. "exact" and "" both mean no prefix.
func NormalizeSavePrefix(raw string) (string, error) {
	switch raw {
	case "^", "~", "":
		return raw, nil
	case "exact":
		return "", nil
	default:
		return "", fmt.Errorf("invalid save prefix %q: expected ^, ~, or exact", raw)
	}
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for usable configuration values.
func validate(cfg *Config) error {
	if cfg.Registry.URL == "" {
		return errors.New("registry.url must not be empty")
	}
	if cfg.Update.Concurrency < 1 {
		return fmt.Errorf("update.concurrency must be at least 1, got %d", cfg.Update.Concurrency)
	}
	if _, err := NormalizeSavePrefix(cfg.Update.SavePrefix); err != nil {
		return fmt.Errorf("update.save_prefix: %w", err)
	}
	return nil
}
