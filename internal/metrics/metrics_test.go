package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
)

func circular(r float64) dynamo.State {
	return dynamo.State{r, 0, 0, 0, math.Sqrt(1 / r), 0}
}

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(Sample{Body: "a", Mu: 1, State: circular(1)})
	m.Observe(Sample{Body: "b", Mu: 1, State: circular(4)})
	if m.Value() != 0 {
		t.Errorf("expected zero drift after first samples, got %g", m.Value())
	}

	// speed up body a: E goes from -0.5 to 0.5*1.21 - 1 = -0.395
	x := circular(1)
	x[4] = 1.1
	m.Observe(Sample{Body: "a", Mu: 1, State: x})
	if got := m.Value(); math.Abs(got-0.21) > 1e-12 {
		t.Errorf("expected drift 0.21, got %g", got)
	}

	m.Observe(Sample{Body: "b", Mu: 1, State: dynamo.State{math.NaN(), 0, 0, 0, 0, 0}})
	if got := m.Value(); math.Abs(got-0.21) > 1e-12 {
		t.Errorf("invalid state changed drift to %g", got)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestSolverMetrics(t *testing.T) {
	samples := []Sample{
		{Solve: kepler.Result{Iterations: 2, Residual: 1e-12, Status: kepler.StatusConverged}},
		{Solve: kepler.Result{Iterations: 32, Residual: -3e-9, Status: kepler.StatusCapped}},
		{Solve: kepler.Result{Iterations: 0, Residual: math.NaN(), Status: kepler.StatusNonFinite}},
		{Solve: kepler.Result{Iterations: 4, Residual: 5e-11, Status: kepler.StatusConverged}},
	}

	residual := NewMaxResidual()
	capped := NewCappedSolves()
	iters := NewMeanIterations()
	for _, s := range samples {
		residual.Observe(s)
		capped.Observe(s)
		iters.Observe(s)
	}

	if residual.Value() != 3e-9 {
		t.Errorf("expected max residual 3e-9, got %g", residual.Value())
	}
	if capped.Value() != 1 {
		t.Errorf("expected 1 capped solve, got %g", capped.Value())
	}
	if iters.Value() != 9.5 {
		t.Errorf("expected mean iterations 9.5, got %g", iters.Value())
	}

	iters.Reset()
	if iters.Value() != 0 {
		t.Error("expected zero mean after reset")
	}
}

func TestStability(t *testing.T) {
	s := NewStability()
	if s.Value() != 1 {
		t.Error("expected full stability with no samples")
	}

	s.Observe(Sample{State: circular(1)})
	s.Observe(Sample{State: dynamo.State{math.Inf(1), 0, 0, 0, 0, 0}})
	if s.Value() != 0.5 {
		t.Errorf("expected stability 0.5, got %g", s.Value())
	}
}

func TestDefault(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}
