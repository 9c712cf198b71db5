// Package config loads the .testnames.yaml configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/testnames/internal/model"
)

// FileName is the configuration file looked up in the working
// directory when no explicit path is given.
const FileName = ".testnames.yaml"

// Config is the full testnames configuration.
type Config struct {
	Rules      RulesConfig      `yaml:"rules"`
	Scan       ScanConfig       `yaml:"scan"`
	Assertions AssertionsConfig `yaml:"assertions"`

	// ExtensionNamespaces lists the namespaces whose types mark a test
	// class as test-framework glue.
	ExtensionNamespaces []string `yaml:"extension_namespaces"`

	// Jobs bounds concurrent class evaluation. Zero means one per CPU.
	Jobs int `yaml:"jobs"`
}

// RulesConfig selects the rules to run.
type RulesConfig struct {
	// Enable adds rules to the default-enabled set.
	Enable []string `yaml:"enable"`

	// Disable removes rules from the enabled set. It wins over Enable.
	Disable []string `yaml:"disable"`

	// MaxComplexity is the simple-test-case limit.
	MaxComplexity int `yaml:"max_complexity"`
}

// ScanConfig controls Java source discovery.
type ScanConfig struct {
	// Include restricts discovery to matching paths when non-empty.
	Include []string `yaml:"include"`

	// Exclude skips matching paths.
	Exclude []string `yaml:"exclude"`

	// Timeout bounds the directory walk. Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

// AssertionsConfig points at an alternative assertion table.
type AssertionsConfig struct {
	// Table is a YAML assertion table path. Empty means the embedded
	// table.
	Table string `yaml:"table"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			MaxComplexity: 10,
		},
		Scan: ScanConfig{
			Exclude: []string{
				"vendor/**",
				"node_modules/**",
				"build/**",
				"target/**",
			},
			Timeout: 30 * time.Second,
		},
		ExtensionNamespaces: append([]string(nil), model.DefaultExtensionNamespaces...),
	}
}

// Load reads the configuration at path. An empty path looks for
// FileName in the working directory and falls back to DefaultConfig
// when it does not exist. Values missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	if cfg.Assertions.Table != "" && !filepath.IsAbs(cfg.Assertions.Table) {
		cfg.Assertions.Table = filepath.Join(filepath.Dir(path), cfg.Assertions.Table)
	}
	return cfg, nil
}

// Parse decodes YAML over DefaultConfig and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and glob syntax.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Rules.MaxComplexity < 0 {
		return fmt.Errorf("rules.max_complexity must not be negative, got %d", c.Rules.MaxComplexity)
	}
	if c.Scan.Timeout < 0 {
		return fmt.Errorf("scan.timeout must not be negative, got %s", c.Scan.Timeout)
	}
	for _, pattern := range append(append([]string(nil), c.Scan.Include...), c.Scan.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid scan pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// EnabledRules applies Enable and Disable to the given default set.
// The result keeps defaults first, then enabled extras, in order.
func (c *Config) EnabledRules(defaults []string) []string {
	disabled := make(map[string]bool, len(c.Rules.Disable))
	for _, id := range c.Rules.Disable {
		disabled[id] = true
	}

	seen := make(map[string]bool)
	out := []string{}
	for _, id := range append(append([]string(nil), defaults...), c.Rules.Enable...) {
		if disabled[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
