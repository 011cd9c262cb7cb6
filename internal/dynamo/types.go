package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sub returns s - other. Components missing from other are copied from s.
func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Position returns the first three components of a 6-vector state.
func (s State) Position() State { return s[:3] }

// Velocity returns the last three components of a 6-vector state.
func (s State) Velocity() State { return s[3:6] }

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian is a System with a conserved energy, used to score integrators.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Observer receives every body's state after each simulator step.
type Observer interface {
	OnStep(t float64, states []State)
}
