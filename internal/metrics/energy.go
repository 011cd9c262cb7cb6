package metrics

import (
	"math"

	"github.com/san-kum/kepler/internal/orbit"
)

// EnergyDrift tracks the largest relative change in specific orbital energy
// of any body since its first sample.
type EnergyDrift struct {
	name     string
	initial  map[string]float64
	maxDrift float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		initial: make(map[string]float64),
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s Sample) {
	if len(s.State) < 6 || !s.State.IsValid() {
		return
	}
	energy := orbit.Energy(s.State, s.Mu)

	e0, ok := e.initial[s.Body]
	if !ok {
		e.initial[s.Body] = energy
		return
	}
	if e0 != 0 {
		drift := math.Abs(energy-e0) / math.Abs(e0)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = make(map[string]float64)
	e.maxDrift = 0
}
