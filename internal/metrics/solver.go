package metrics

import (
	"math"

	"github.com/san-kum/kepler/internal/kepler"
)

// MaxResidual is the largest |f| left by any finite solve.
type MaxResidual struct {
	name string
	max  float64
}

func NewMaxResidual() *MaxResidual {
	return &MaxResidual{name: "max_residual"}
}

func (m *MaxResidual) Name() string { return m.name }

func (m *MaxResidual) Observe(s Sample) {
	if s.Solve.Status == kepler.StatusNonFinite {
		return
	}
	m.max = math.Max(m.max, math.Abs(s.Solve.Residual))
}

func (m *MaxResidual) Value() float64 { return m.max }

func (m *MaxResidual) Reset() { m.max = 0 }

// CappedSolves counts solves that hit their iteration cap.
type CappedSolves struct {
	name  string
	count int
}

func NewCappedSolves() *CappedSolves {
	return &CappedSolves{name: "capped_solves"}
}

func (c *CappedSolves) Name() string { return c.name }

func (c *CappedSolves) Observe(s Sample) {
	if s.Solve.Status == kepler.StatusCapped {
		c.count++
	}
}

func (c *CappedSolves) Value() float64 { return float64(c.count) }

func (c *CappedSolves) Reset() { c.count = 0 }

type MeanIterations struct {
	name    string
	sum     int
	samples int
}

func NewMeanIterations() *MeanIterations {
	return &MeanIterations{name: "mean_iterations"}
}

func (m *MeanIterations) Name() string { return m.name }

func (m *MeanIterations) Observe(s Sample) {
	m.sum += s.Solve.Iterations
	m.samples++
}

func (m *MeanIterations) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.sum) / float64(m.samples)
}

func (m *MeanIterations) Reset() {
	m.sum = 0
	m.samples = 0
}
