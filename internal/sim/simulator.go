package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/metrics"
)

// minParallelBodies is the smallest body count worth fanning out per step.
const minParallelBodies = 8

// MaxSteps bounds the time grid of a single run; every step is kept in memory.
const MaxSteps = 10_000_000

type Simulator struct {
	metrics   []metrics.Metric
	observers []dynamo.Observer
	logger    zerolog.Logger
}

type Option func(*Simulator)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithMetrics(m ...metrics.Metric) Option {
	return func(s *Simulator) { s.metrics = append(s.metrics, m...) }
}

func New(opts ...Option) *Simulator {
	s := &Simulator{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m metrics.Metric)    { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run propagates every body on a fixed time grid from 0 to cfg.Duration.
// On cancellation the partial result is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context, bodies []Body, cfg Config) (*Result, error) {
	if err := validateConfig(bodies, cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg)
	result := &Result{
		Bodies:  make([]string, len(bodies)),
		Times:   make([]float64, 0, steps+1),
		States:  make([][]dynamo.State, 0, steps+1),
		Metrics: make(map[string]float64),
	}
	for i, b := range bodies {
		result.Bodies[i] = b.Name
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug().
		Int("bodies", len(bodies)).
		Int("steps", steps).
		Float64("dt", cfg.Dt).
		Msg("propagation started")

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		out := s.step(bodies, t, cfg.Workers)

		if err := s.observe(bodies, i, t, out, cfg); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		result.Times = append(result.Times, t)
		result.States = append(result.States, out.states)
		if i > 0 {
			result.StepsTaken++
		}
	}

	s.finish(result)
	s.logger.Debug().
		Int("steps", result.StepsTaken).
		Int("errors", len(result.Errors)).
		Msg("propagation finished")
	return result, nil
}

// RunWithCallback streams states instead of collecting them. The callback
// returning false stops the run without error.
func (s *Simulator) RunWithCallback(ctx context.Context, bodies []Body, cfg Config, callback func(t float64, states []dynamo.State) bool) error {
	if err := validateConfig(bodies, cfg); err != nil {
		return err
	}

	steps := stepCount(cfg)
	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		out := s.step(bodies, t, cfg.Workers)
		if err := s.observe(bodies, i, t, out, cfg); err != nil {
			return err
		}
		if !callback(t, out.states) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) step(bodies []Body, t float64, workers int) stepOutput {
	out := stepOutput{
		states: make([]dynamo.State, len(bodies)),
		solves: make([]kepler.Result, len(bodies)),
	}
	dynamo.ParallelFor(len(bodies), minParallelBodies, workers, func(start, end int) {
		for j := start; j < end; j++ {
			out.states[j], out.solves[j] = bodies[j].Propagator.At(t)
		}
	})
	return out
}

// observe feeds metrics and observers serially and reports the first
// invalid state when validation is on.
func (s *Simulator) observe(bodies []Body, step int, t float64, out stepOutput, cfg Config) error {
	for j, b := range bodies {
		res := out.solves[j]
		if res.Status == kepler.StatusCapped {
			s.logger.Warn().
				Str("body", b.Name).
				Float64("t", t).
				Int("iterations", res.Iterations).
				Float64("residual", res.Residual).
				Msg("kepler solve hit iteration cap")
		}

		sample := metrics.Sample{
			Body:  b.Name,
			Time:  t,
			Mu:    b.Propagator.Elements().Mu,
			State: out.states[j],
			Solve: res,
		}
		for _, m := range s.metrics {
			m.Observe(sample)
		}

		if cfg.ValidateState && !out.states[j].IsValid() {
			return &dynamo.SimulationError{Step: step, Time: t, Body: b.Name, Wrapped: dynamo.ErrInvalidState}
		}
	}

	for _, obs := range s.observers {
		obs.OnStep(t, out.states)
	}
	return nil
}

func (s *Simulator) finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(bodies []Body, cfg Config) error {
	if !positiveFinite(cfg.Dt) {
		return fmt.Errorf("%w: dt must be positive and finite, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if !positiveFinite(cfg.Duration) {
		return fmt.Errorf("%w: duration must be positive and finite, got %f", dynamo.ErrParameterBounds, cfg.Duration)
	}
	if cfg.Duration/cfg.Dt > MaxSteps {
		return fmt.Errorf("%w: duration/dt = %g exceeds %d steps", dynamo.ErrParameterBounds, cfg.Duration/cfg.Dt, MaxSteps)
	}
	if len(bodies) == 0 {
		return errors.New("no bodies to propagate")
	}
	seen := make(map[string]bool, len(bodies))
	for _, b := range bodies {
		if b.Propagator == nil {
			return fmt.Errorf("body %q has no propagator", b.Name)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate body name %q", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// stepCount tolerates Duration/Dt landing a hair under an integer.
func stepCount(cfg Config) int {
	return int(math.Floor(cfg.Duration/cfg.Dt + 1e-9))
}
