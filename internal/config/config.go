// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"funnel-cost/core/types"
	"funnel-cost/internal/errors"
	"funnel-cost/internal/logging"
)

// EnvPrefix namespaces every environment override
const EnvPrefix = "FUNNEL_COST_"

// FileName is the configuration file looked up in the home directory
const FileName = ".funnel-cost.yaml"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" yaml:"version"`

	// Output contains output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Simulation contains engine-driving settings
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format" yaml:"default_format" env:"FORMAT"`

	// Currency labels amounts in reports
	Currency types.Currency `json:"currency" yaml:"currency" env:"CURRENCY"`

	// Locale drives digit grouping, e.g. "en" or "pt-BR"
	Locale string `json:"locale" yaml:"locale" env:"LOCALE"`

	// ShowDetails shows per-band charges and lineage
	ShowDetails bool `json:"show_details" yaml:"show_details" env:"DETAILS"`

	// NoColor disables ANSI colors
	NoColor bool `json:"no_color" yaml:"no_color" env:"NO_COLOR"`
}

// SimulationConfig contains settings for sweeps and projections
type SimulationConfig struct {
	// Workers bounds sweep parallelism; 0 or 1 runs sequentially
	Workers int `json:"workers" yaml:"workers" env:"WORKERS"`

	// Horizon is the projection length in months
	Horizon int `json:"horizon" yaml:"horizon" env:"HORIZON"`

	// Scenario is a scenario file used when none is given
	Scenario string `json:"scenario,omitempty" yaml:"scenario,omitempty" env:"SCENARIO"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Output: OutputConfig{
			DefaultFormat: "cli",
			Currency:      types.CurrencyBRL,
			Locale:        "en",
			ShowDetails:   false,
		},
		Simulation: SimulationConfig{
			Workers: 1,
			Horizon: 12,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns ~/.funnel-cost.yaml, or the bare file name when the
// home directory is unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load loads configuration from a file, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errors.Config("failed to parse config file", err).WithContext("path", path)
		}
	case !os.IsNotExist(err):
		return nil, errors.Config("failed to read config file", err).WithContext("path", path)
	}

	if err := config.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from FUNNEL_COST_* variables. A nil environ
// reads the process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.Config("failed to read environment overrides", err)
	}
	return nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	var problems error
	if !c.Output.Currency.Valid() {
		problems = multierr.Append(problems, errors.InvalidField("output.currency", "unsupported currency %q", c.Output.Currency))
	}
	if c.Output.Locale == "" {
		problems = multierr.Append(problems, errors.InvalidField("output.locale", "must not be empty"))
	}
	if c.Simulation.Workers < 0 {
		problems = multierr.Append(problems, errors.InvalidField("simulation.workers", "must not be negative, got %d", c.Simulation.Workers))
	}
	if c.Simulation.Horizon < 0 {
		problems = multierr.Append(problems, errors.InvalidField("simulation.horizon", "must not be negative, got %d", c.Simulation.Horizon))
	}
	return errors.Validation("tool configuration", problems)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Config("failed to encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Config("failed to write config file", err).WithContext("path", path)
	}
	return nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
