package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/orbit"
	"github.com/san-kum/kepler/internal/sim"
)

const (
	DefaultMu         = 1.0
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultIntegrator = "rk4"
)

// Config is a propagation run file. Angles are in degrees.
type Config struct {
	Name       string       `yaml:"name"`
	Mu         float64      `yaml:"mu"`
	Dt         float64      `yaml:"dt"`
	Duration   float64      `yaml:"duration"`
	Workers    int          `yaml:"workers,omitempty"`
	Integrator string       `yaml:"integrator"`
	Bodies     []BodyConfig `yaml:"bodies"`
}

type BodyConfig struct {
	Name          string  `yaml:"name"`
	SemiMajorAxis float64 `yaml:"a"`
	Eccentricity  float64 `yaml:"e"`
	Inclination   float64 `yaml:"i"`
	RAAN          float64 `yaml:"raan"`
	ArgPeriapsis  float64 `yaml:"argp"`
	MeanAnomaly   float64 `yaml:"m0"`

	// Mu overrides the run's gravitational parameter for this body.
	Mu float64 `yaml:"mu,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "run",
		Mu:         DefaultMu,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Integrator: DefaultIntegrator,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	return &cp
}

// Elements converts the body to radians and fills in mu.
func (b BodyConfig) Elements(mu float64) orbit.Elements {
	if b.Mu != 0 {
		mu = b.Mu
	}
	rad := math.Pi / 180
	return orbit.Elements{
		SemiMajorAxis: b.SemiMajorAxis,
		Eccentricity:  b.Eccentricity,
		Inclination:   b.Inclination * rad,
		RAAN:          b.RAAN * rad,
		ArgPeriapsis:  b.ArgPeriapsis * rad,
		MeanAnomaly:   b.MeanAnomaly * rad,
		Mu:            mu,
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Dt > 0) || math.IsInf(c.Dt, 1) {
		errs = append(errs, fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrParameterBounds, c.Dt))
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 1) {
		errs = append(errs, fmt.Errorf("%w: duration must be positive and finite, got %g", dynamo.ErrParameterBounds, c.Duration))
	}
	if len(errs) == 0 && c.Duration/c.Dt > sim.MaxSteps {
		errs = append(errs, fmt.Errorf("%w: duration/dt = %g exceeds %d steps", dynamo.ErrParameterBounds, c.Duration/c.Dt, sim.MaxSteps))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers must not be negative", dynamo.ErrParameterBounds))
	}
	if c.Integrator != "" {
		if _, err := integrators.Lookup(c.Integrator); err != nil {
			errs = append(errs, err)
		}
	}
	if len(c.Bodies) == 0 {
		errs = append(errs, errors.New("at least one body is required"))
	}

	seen := make(map[string]bool)
	for i, b := range c.Bodies {
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("body %d: missing name", i))
		} else if seen[b.Name] {
			errs = append(errs, fmt.Errorf("body %d: duplicate name %q", i, b.Name))
		}
		seen[b.Name] = true
		if err := b.Elements(c.Mu).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("body %q: %w", b.Name, err))
		}
	}
	return errors.Join(errs...)
}

// SimBodies validates the config and builds a propagator per body.
func (c *Config) SimBodies() ([]sim.Body, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	bodies := make([]sim.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		p, err := orbit.NewPropagator(b.Elements(c.Mu))
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
		bodies[i] = sim.Body{Name: b.Name, Propagator: p}
	}
	return bodies, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		Workers:       c.Workers,
		ValidateState: true,
	}
}
