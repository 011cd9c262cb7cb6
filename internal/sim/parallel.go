package sim

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/orbit"
)

// Comparison scores one integrator against the closed-form propagator.
type Comparison struct {
	Integrator    string
	PositionError float64
	EnergyDrift   float64
	Elapsed       time.Duration
	Err           error
}

// Compare integrates the two-body problem from body's state at t = 0 with
// each named integrator concurrently and measures the final deviation from
// the analytic state.
func Compare(ctx context.Context, body Body, names []string, cfg Config) ([]Comparison, error) {
	if err := validateConfig([]Body{body}, cfg); err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, err := integrators.Lookup(name); err != nil {
			return nil, err
		}
	}

	mu := body.Propagator.Elements().Mu
	x0, _ := body.Propagator.At(0)
	steps := stepCount(cfg)
	tEnd := float64(steps) * cfg.Dt
	want, _ := body.Propagator.At(tEnd)

	results := make([]Comparison, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			integ, _ := integrators.Lookup(name)
			tb := orbit.NewTwoBody(mu)
			start := time.Now()
			x, err := integrate(ctx, integ, tb, x0, steps, cfg.Dt)
			c := Comparison{Integrator: name, Elapsed: time.Since(start), Err: err}
			if err == nil {
				c.PositionError = x.Position().Sub(want.Position()).Norm()
				c.EnergyDrift = energyDrift(tb, x0, x)
			}
			results[idx] = c
		}(i, name)
	}
	wg.Wait()

	return results, ctx.Err()
}

func integrate(ctx context.Context, integ dynamo.Integrator, sys dynamo.System, x dynamo.State, steps int, dt float64) (dynamo.State, error) {
	x = x.Clone()
	for i := 0; i < steps; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return x, err
			}
		}
		x = integ.Step(sys, x, float64(i)*dt, dt)
		if !x.IsValid() {
			return x, &dynamo.SimulationError{Step: i, Time: float64(i+1) * dt, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return x, nil
}

// energyDrift is |E(x) - E(x0)| / |E(x0)|, or the absolute change when
// E(x0) is zero.
func energyDrift(h dynamo.Hamiltonian, x0, x dynamo.State) float64 {
	e0 := h.Energy(x0)
	d := math.Abs(h.Energy(x) - e0)
	if e0 == 0 {
		return d
	}
	return d / math.Abs(e0)
}

// ErrIntegratorFailed is returned by Best when no integrator finished.
var ErrIntegratorFailed = errors.New("no integrator completed")

// Best picks the comparison with the smallest position error.
func Best(cs []Comparison) (Comparison, error) {
	best := -1
	for i, c := range cs {
		if c.Err != nil {
			continue
		}
		if best < 0 || c.PositionError < cs[best].PositionError {
			best = i
		}
	}
	if best < 0 {
		return Comparison{}, ErrIntegratorFailed
	}
	return cs[best], nil
}
