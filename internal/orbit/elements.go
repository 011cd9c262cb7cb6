package orbit

import (
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/kepler"
)

// Elements are classical orbital elements at epoch t = 0.
//
// SemiMajorAxis is the magnitude |a| for both conics; Eccentricity decides
// whether the orbit is elliptic (e < 1) or hyperbolic (e > 1).
type Elements struct {
	SemiMajorAxis float64 `json:"semi_major_axis" yaml:"semi_major_axis"`
	Eccentricity  float64 `json:"eccentricity" yaml:"eccentricity"`
	Inclination   float64 `json:"inclination" yaml:"inclination"`
	RAAN          float64 `json:"raan" yaml:"raan"`
	ArgPeriapsis  float64 `json:"arg_periapsis" yaml:"arg_periapsis"`
	MeanAnomaly   float64 `json:"mean_anomaly" yaml:"mean_anomaly"`
	Mu            float64 `json:"mu" yaml:"mu"`
}

// Hyperbolic reports whether the elements describe an open orbit.
func (el Elements) Hyperbolic() bool {
	return el.Eccentricity > 1
}

// Validate checks the elements without building a solver.
func (el Elements) Validate() error {
	if !finite(el.SemiMajorAxis) || el.SemiMajorAxis <= 0 {
		return fmt.Errorf("%w: semi-major axis %g", dynamo.ErrParameterBounds, el.SemiMajorAxis)
	}
	if !finite(el.Mu) || el.Mu <= 0 {
		return fmt.Errorf("%w: mu %g", dynamo.ErrParameterBounds, el.Mu)
	}
	for _, v := range []float64{el.Inclination, el.RAAN, el.ArgPeriapsis, el.MeanAnomaly} {
		if !finite(v) {
			return fmt.Errorf("%w: non-finite angle", dynamo.ErrParameterBounds)
		}
	}
	if el.Eccentricity == 1 {
		return &kepler.DomainError{Orbit: "parabolic", Eccentricity: el.Eccentricity}
	}
	if !finite(el.Eccentricity) || el.Eccentricity < 0 {
		return &kepler.DomainError{Orbit: "elliptic", Eccentricity: el.Eccentricity}
	}
	return nil
}

// ElementsFromState recovers elements from a Cartesian state. Degenerate
// angles are pinned: RAAN is 0 for equatorial orbits and ArgPeriapsis is 0
// for circular ones, with the anomaly measured from the node line (or the
// x axis) instead.
func ElementsFromState(x dynamo.State, mu float64) (Elements, error) {
	if len(x) < 6 || !x.IsValid() {
		return Elements{}, dynamo.ErrInvalidState
	}
	r := vec3{x[0], x[1], x[2]}
	v := vec3{x[3], x[4], x[5]}

	rn := r.norm()
	h := r.cross(v)
	hn := h.norm()
	if rn == 0 || hn == 0 {
		return Elements{}, fmt.Errorf("%w: rectilinear orbit", dynamo.ErrInvalidState)
	}
	hhat := h.scale(1 / hn)

	ev := r.scale(v.dot(v) - mu/rn).sub(v.scale(r.dot(v))).scale(1 / mu)
	e := ev.norm()

	energy := 0.5*v.dot(v) - mu/rn
	el := Elements{
		SemiMajorAxis: math.Abs(mu / (2 * energy)),
		Eccentricity:  e,
		Inclination:   math.Acos(clamp(hhat[2], -1, 1)),
		Mu:            mu,
	}

	const eps = 1e-11
	node := vec3{-h[1], h[0], 0}
	ref := vec3{1, 0, 0}
	if nn := node.norm(); nn > eps*hn {
		ref = node.scale(1 / nn)
		el.RAAN = math.Atan2(ref[1], ref[0])
	}

	periapsis := ref
	if e > eps {
		periapsis = ev.scale(1 / e)
		el.ArgPeriapsis = planeAngle(ref, periapsis, hhat)
	}
	nu := planeAngle(periapsis, r, hhat)

	switch {
	case e < 1:
		E := math.Atan2(math.Sqrt(1-e*e)*math.Sin(nu), e+math.Cos(nu))
		el.MeanAnomaly = E - e*math.Sin(E)
	case e > 1:
		H := math.Asinh(math.Sqrt(e*e-1) * math.Sin(nu) / (1 + e*math.Cos(nu)))
		el.MeanAnomaly = e*math.Sinh(H) - H
	default:
		return el, &kepler.DomainError{Orbit: "parabolic", Eccentricity: e}
	}
	return el, nil
}

// planeAngle is the signed angle from a to b about axis n.
func planeAngle(a, b, n vec3) float64 {
	return math.Atan2(a.cross(b).dot(n), a.dot(b))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

type vec3 [3]float64

func (a vec3) dot(b vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a vec3) cross(b vec3) vec3 {
	return vec3{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func (a vec3) norm() float64 { return math.Sqrt(a.dot(a)) }

func (a vec3) scale(s float64) vec3 { return vec3{a[0] * s, a[1] * s, a[2] * s} }

func (a vec3) sub(b vec3) vec3 { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
