package sim

import (
	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/orbit"
)

// Body is a named orbit to propagate.
type Body struct {
	Name       string
	Propagator *orbit.Propagator
}

type Config struct {
	Dt       float64
	Duration float64

	// Workers bounds the goroutines used per step; 0 means GOMAXPROCS.
	Workers int

	// ValidateState stops the run at the first non-finite state.
	ValidateState bool
}

type Result struct {
	Bodies []string
	Times  []float64

	// States[i][j] is body j at Times[i].
	States [][]dynamo.State

	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Trajectory returns the states of one body across the run.
func (r *Result) Trajectory(body int) []dynamo.State {
	out := make([]dynamo.State, len(r.States))
	for i, step := range r.States {
		out[i] = step[body]
	}
	return out
}

type stepOutput struct {
	states []dynamo.State
	solves []kepler.Result
}
