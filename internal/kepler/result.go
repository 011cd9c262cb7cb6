package kepler

import (
	"fmt"
	"math"
)

const (
	// Tolerance is the residual below which a solve counts as converged.
	Tolerance = 1e-10

	// MaxEllipticIterations bounds the Laguerre loop.
	MaxEllipticIterations = 32

	// MaxHyperbolicIterations bounds the Halley corrections, the first
	// (unconditional) step included.
	MaxHyperbolicIterations = 8
)

// Status tells how a solve terminated.
type Status int

const (
	StatusConverged Status = iota
	StatusCapped
	StatusNonFinite
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusCapped:
		return "capped"
	case StatusNonFinite:
		return "non-finite"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is the detailed outcome of a single solve.
type Result struct {
	Anomaly    float64
	Iterations int
	Residual   float64
	Status     Status
}

// Converged reports whether the residual met the threshold.
func (r Result) Converged() bool {
	return r.Status == StatusConverged
}

// Err returns a wrapped ErrNonConvergence for capped results and nil
// otherwise. Anomaly still holds the best available estimate.
func (r Result) Err() error {
	if r.Status != StatusCapped {
		return nil
	}
	return fmt.Errorf("%w: residual %.3e after %d iterations", ErrNonConvergence, r.Residual, r.Iterations)
}

// Solver is the common surface of both conic solvers.
type Solver interface {
	Solve(meanAnomaly float64) float64
	SolveResult(meanAnomaly float64) Result
	Eccentricity() float64
}

// New returns an elliptic solver for e < 1 and a hyperbolic one for e > 1.
// The parabolic case e == 1 is rejected.
func New(eccentricity float64) (Solver, error) {
	if isFinite(eccentricity) && eccentricity > 1 {
		return NewHyperbolicSolver(eccentricity)
	}
	if isFinite(eccentricity) && eccentricity == 1 {
		return nil, &DomainError{Orbit: "parabolic", Eccentricity: eccentricity}
	}
	return NewEllipticSolver(eccentricity)
}

func nonFinite(m float64) Result {
	return Result{Anomaly: m, Residual: math.NaN(), Status: StatusNonFinite}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// reduceAngle maps m into [-π, π] and returns the 2πk offset removed.
// math.Remainder is odd in m, so reduceAngle(-m) mirrors reduceAngle(m).
func reduceAngle(m float64) (reduced, offset float64) {
	reduced = math.Remainder(m, 2*math.Pi)
	return reduced, m - reduced
}

// splitSign returns |x| and the sign that restores x.
func splitSign(x float64) (float64, float64) {
	if math.Signbit(x) {
		return -x, -1
	}
	return x, 1
}
