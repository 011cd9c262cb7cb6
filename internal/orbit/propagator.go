package orbit

import (
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
)

// Propagator evaluates the Keplerian state of one orbit at arbitrary times.
// It is immutable after construction and safe for concurrent use.
type Propagator struct {
	el     Elements
	solver kepler.Solver

	meanMotion float64
	semiMinor  float64
	p, q       vec3 // perifocal x and y axes in the inertial frame
}

func NewPropagator(el Elements) (*Propagator, error) {
	if err := el.Validate(); err != nil {
		return nil, err
	}
	solver, err := kepler.New(el.Eccentricity)
	if err != nil {
		return nil, err
	}

	a, e := el.SemiMajorAxis, el.Eccentricity
	sO, cO := math.Sincos(el.RAAN)
	sw, cw := math.Sincos(el.ArgPeriapsis)
	si, ci := math.Sincos(el.Inclination)

	return &Propagator{
		el:         el,
		solver:     solver,
		meanMotion: math.Sqrt(el.Mu / (a * a * a)),
		semiMinor:  a * math.Sqrt(math.Abs(1-e*e)),
		p:          vec3{cO*cw - sO*sw*ci, sO*cw + cO*sw*ci, sw * si},
		q:          vec3{-cO*sw - sO*cw*ci, -sO*sw + cO*cw*ci, cw * si},
	}, nil
}

func (p *Propagator) Elements() Elements { return p.el }

func (p *Propagator) Solver() kepler.Solver { return p.solver }

func (p *Propagator) MeanMotion() float64 { return p.meanMotion }

// Period is 2π/n for closed orbits and +Inf for hyperbolic ones.
func (p *Propagator) Period() float64 {
	if p.el.Hyperbolic() {
		return math.Inf(1)
	}
	return 2 * math.Pi / p.meanMotion
}

// SpecificEnergy is -μ/2a for ellipses and +μ/2|a| for hyperbolas.
func (p *Propagator) SpecificEnergy() float64 {
	en := p.el.Mu / (2 * p.el.SemiMajorAxis)
	if p.el.Hyperbolic() {
		return en
	}
	return -en
}

func (p *Propagator) MeanAnomalyAt(t float64) float64 {
	return p.el.MeanAnomaly + p.meanMotion*t
}

// At returns the state at time t along with the solve that produced it.
// A capped solve still yields a state from the best anomaly estimate.
func (p *Propagator) At(t float64) (dynamo.State, kepler.Result) {
	res := p.solver.SolveResult(p.MeanAnomalyAt(t))
	a, e, b, n := p.el.SemiMajorAxis, p.el.Eccentricity, p.semiMinor, p.meanMotion

	var x, y, vx, vy float64
	if p.el.Hyperbolic() {
		sh, ch := math.Sinh(res.Anomaly), math.Cosh(res.Anomaly)
		rate := n / (e*ch - 1)
		x, y = a*(e-ch), b*sh
		vx, vy = -a*sh*rate, b*ch*rate
	} else {
		s, c := math.Sincos(res.Anomaly)
		rate := n / (1 - e*c)
		x, y = a*(c-e), b*s
		vx, vy = -a*s*rate, b*c*rate
	}

	pos := p.p.scale(x)
	pos = vec3{pos[0] + p.q[0]*y, pos[1] + p.q[1]*y, pos[2] + p.q[2]*y}
	vel := p.p.scale(vx)
	vel = vec3{vel[0] + p.q[0]*vy, vel[1] + p.q[1]*vy, vel[2] + p.q[2]*vy}

	return dynamo.State{pos[0], pos[1], pos[2], vel[0], vel[1], vel[2]}, res
}
