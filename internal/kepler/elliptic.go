package kepler

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// laguerreOrder is the polynomial degree assumed by the Laguerre step.
// Five is the customary choice for Kepler's equation.
const laguerreOrder = 5.0

// seedDamping keeps the seed strictly inside the bracket near M = π.
const seedDamping = 0.999999

// EllipticSolver solves E - e·sin(E) = M for a fixed eccentricity in [0, 1).
type EllipticSolver struct {
	eccentricity float64
}

// NewEllipticSolver validates e and returns a solver bound to it.
func NewEllipticSolver(eccentricity float64) (*EllipticSolver, error) {
	if !validElliptic(eccentricity) {
		return nil, &DomainError{Orbit: "elliptic", Eccentricity: eccentricity}
	}
	return &EllipticSolver{eccentricity: eccentricity}, nil
}

func validElliptic(e float64) bool {
	return isFinite(e) && e >= 0 && e < 1
}

func (s *EllipticSolver) Eccentricity() float64 { return s.eccentricity }

// Solve returns the eccentric anomaly for meanAnomaly. If the iteration cap
// is hit the best estimate is returned; use SolveResult to tell.
func (s *EllipticSolver) Solve(meanAnomaly float64) float64 {
	return s.SolveResult(meanAnomaly).Anomaly
}

// SolveResult is Solve with iteration count, residual and status attached.
func (s *EllipticSolver) SolveResult(meanAnomaly float64) Result {
	if !isFinite(meanAnomaly) {
		return nonFinite(meanAnomaly)
	}
	if s.eccentricity == 0 {
		return Result{Anomaly: meanAnomaly, Status: StatusConverged}
	}

	reduced, offset := reduceAngle(meanAnomaly)
	m, sign := splitSign(reduced)

	r := refineLaguerre(s.eccentricity, m, ellipticSeed(s.eccentricity, m), MaxEllipticIterations)
	r.Anomaly = sign*r.Anomaly + offset
	r.Residual *= sign
	return r
}

// ellipticSeed is a rational starter for m in [0, π], close enough that
// refinement needs only a few steps even as e approaches 1. Its denominator
// is bounded below by (π - 2e)² > 0.
func ellipticSeed(e, m float64) float64 {
	num := seedDamping * 4 * e * m * (math.Pi - m)
	den := 8*e*m + 4*e*(e-math.Pi) + math.Pi*math.Pi
	return m + num/den
}

// refineLaguerre iterates Laguerre steps from E until |f(E)| < Tolerance or
// maxIter steps have been taken.
func refineLaguerre(e, m, E float64, maxIter int) Result {
	for i := 0; ; i++ {
		sinE, cosE := math.Sincos(E)
		f := E - e*sinE - m
		if math.Abs(f) < Tolerance {
			return Result{Anomaly: E, Iterations: i, Residual: f, Status: StatusConverged}
		}
		if i >= maxIter {
			return Result{Anomaly: E, Iterations: i, Residual: f, Status: StatusCapped}
		}
		E += laguerreDelta(f, 1-e*cosE, e*sinE)
	}
}

// laguerreDelta is the order-n Laguerre correction for f with first and
// second derivatives fp and fpp.
func laguerreDelta(f, fp, fpp float64) float64 {
	const n = laguerreOrder
	root := math.Sqrt(math.Abs((n-1)*(n-1)*fp*fp - n*(n-1)*f*fpp))
	return -n * f / (fp + laguerreSign(fp)*root)
}

// laguerreSign picks the root sign that maximizes the denominator's
// magnitude, i.e. the sign of f'.
func laguerreSign(fp float64) float64 {
	if fp < 0 {
		return -1
	}
	return 1
}

type solverConfig struct {
	Eccentricity float64 `json:"eccentricity" yaml:"eccentricity"`
}

func (s *EllipticSolver) MarshalJSON() ([]byte, error) {
	return json.Marshal(solverConfig{Eccentricity: s.eccentricity})
}

func (s *EllipticSolver) UnmarshalJSON(data []byte) error {
	var cfg solverConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	return s.restore(cfg)
}

func (s *EllipticSolver) MarshalYAML() (interface{}, error) {
	return solverConfig{Eccentricity: s.eccentricity}, nil
}

func (s *EllipticSolver) UnmarshalYAML(node *yaml.Node) error {
	var cfg solverConfig
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	return s.restore(cfg)
}

func (s *EllipticSolver) restore(cfg solverConfig) error {
	v, err := NewEllipticSolver(cfg.Eccentricity)
	if err != nil {
		return fmt.Errorf("decode elliptic solver: %w", err)
	}
	*s = *v
	return nil
}
