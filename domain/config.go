package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ConfigFilename is the standard name for wetwire configuration files
const ConfigFilename = "wetwire.yaml"

// Config is the content of wetwire.yaml.
type Config struct {
	Domain  string                 `yaml:"domain"`
	Version string                 `yaml:"version,omitempty"`
	Build   *BuildConfig           `yaml:"build,omitempty"`
	Lint    *LintConfig            `yaml:"lint,omitempty"`
	Mixin   *MixinConfig           `yaml:"mixin,omitempty"`
	Extra   map[string]interface{} `yaml:",inline"`
}

// BuildConfig holds build defaults.
type BuildConfig struct {
	// Output is where build writes the plan when no --output is given.
	Output string `yaml:"output,omitempty"`
}

// LintConfig switches lint rules on and off by ID.
type LintConfig struct {
	Rules map[string]bool `yaml:"rules,omitempty"`
}

// MixinConfig holds the settings of the mixin planner. Every field can be
// overridden from the environment.
type MixinConfig struct {
	// TieBreak names the strategy used when several mixins may come next.
	TieBreak string `yaml:"tieBreak,omitempty" env:"WETWIRE_MIXIN_TIE_BREAK"`
	// Types lists Go source directories scanned for type information.
	Types []string `yaml:"types,omitempty" env:"WETWIRE_MIXIN_TYPES" envSeparator:","`
	// LogLevel is the zerolog level name.
	LogLevel string `yaml:"logLevel,omitempty" env:"WETWIRE_MIXIN_LOG_LEVEL"`
}

// ApplyEnv overrides the mixin section with WETWIRE_MIXIN_* environment
// variables. Unset variables leave the file values alone.
func (c *Config) ApplyEnv() error {
	mc := MixinConfig{}
	if c.Mixin != nil {
		mc = *c.Mixin
	}
	if err := env.Parse(&mc); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if c.Mixin != nil || mc.TieBreak != "" || mc.LogLevel != "" || len(mc.Types) > 0 {
		c.Mixin = &mc
	}
	return nil
}

// LoadConfigFrom looks for wetwire.yaml in startDir and its parents. A missing
// file yields an empty Config and an empty path.
func LoadConfigFrom(startDir string) (*Config, string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	currentDir := absDir
	for {
		configPath := filepath.Join(currentDir, ConfigFilename)

		if _, err := os.Stat(configPath); err == nil {
			config, err := LoadConfigFile(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, configPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return &Config{}, "", nil
		}

		currentDir = parentDir
	}
}

// LoadConfigFile reads one configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &config, nil
}

// SaveConfigTo writes config to path, creating parent directories.
func SaveConfigTo(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfig finds the configuration for startDir and applies environment
// overrides. Relative mixin type directories and the build output are
// resolved against the directory of the configuration file.
func ResolveConfig(startDir string) (*Config, string, error) {
	config, path, err := LoadConfigFrom(startDir)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, "", err
	}
	if path == "" {
		return config, path, nil
	}
	base := filepath.Dir(path)
	if config.Mixin != nil {
		for i, dir := range config.Mixin.Types {
			if !filepath.IsAbs(dir) {
				config.Mixin.Types[i] = filepath.Join(base, dir)
			}
		}
	}
	if config.Build != nil && config.Build.Output != "" && !filepath.IsAbs(config.Build.Output) {
		config.Build.Output = filepath.Join(base, config.Build.Output)
	}
	return config, path, nil
}

// DisabledRules returns the lint rules switched off in the configuration.
func (c *Config) DisabledRules() []string {
	if c == nil || c.Lint == nil {
		return nil
	}
	var out []string
	for id, enabled := range c.Lint.Rules {
		if !enabled {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// BuildOutput returns the configured plan output path, or "".
func (c *Config) BuildOutput() string {
	if c == nil || c.Build == nil {
		return ""
	}
	return c.Build.Output
}
