package config

import (
	"github.com/AndreyAkinshin/lvunit/internal/labview"
	"github.com/AndreyAkinshin/lvunit/internal/runner"
	"github.com/AndreyAkinshin/lvunit/internal/terminate"
)

// Default configuration values.
const (
	DefaultCLI         = runner.DefaultCLI
	DefaultHostProcess = terminate.DefaultHostProcess
	DefaultEnvPrefix   = labview.DefaultEnvPrefix
)

// Default returns a configuration with every default applied and no runs.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
// Terminate is left empty so the platform default is chosen at run time.
func applyDefaults(cfg *Config) {
	if cfg.CLI == "" {
		cfg.CLI = DefaultCLI
	}
	if cfg.HostProcess == "" {
		cfg.HostProcess = DefaultHostProcess
	}
	if cfg.EnvPrefix == "" {
		cfg.EnvPrefix = DefaultEnvPrefix
	}
}
