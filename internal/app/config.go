package app

import (
	"errors"

	"github.com/ethe/numagroup/internal/config"
)

// Config holds everything an App instance needs to run: the optional HCL
// config path, the group settings given as flags (which override the file),
// and the ambient knobs.
type Config struct {
	ConfigPath string // optional .hcl file

	// Overrides carries only the group settings the user passed explicitly
	// on the command line; they win over the config file.
	Overrides config.Model

	Inspect bool // print topology and plan, start nothing

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.HealthcheckPort < 0 {
		return nil, errors.New("healthcheck-port cannot be negative")
	}
	if err := cfg.Overrides.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
