package metrics

import (
	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
)

// Sample is one body's propagated state at one time step.
type Sample struct {
	Body  string
	Time  float64
	Mu    float64
	State dynamo.State
	Solve kepler.Result
}

// Metric accumulates a scalar over a run. Implementations are not safe for
// concurrent use; the simulator feeds them from a single goroutine.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

// Default returns a fresh instance of every metric, in report order.
func Default() []Metric {
	return []Metric{
		NewEnergyDrift(),
		NewMaxResidual(),
		NewCappedSolves(),
		NewMeanIterations(),
		NewStability(),
	}
}
