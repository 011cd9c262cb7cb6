package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level settings read from the environment.
type Env struct {
	DataDir    string `env:"KEPLER_DATA_DIR"    envDefault:".kepler"`
	LogLevel   string `env:"KEPLER_LOG_LEVEL"   envDefault:"info"`
	LogNoColor bool   `env:"KEPLER_LOG_NOCOLOR"`
	Workers    int    `env:"KEPLER_WORKERS"`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ApplyEnv fills Workers from the environment when the run file left it 0.
func (c *Config) ApplyEnv(e Env) {
	if c.Workers == 0 {
		c.Workers = e.Workers
	}
}
