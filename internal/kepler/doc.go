// Package kepler solves Kepler's equation for the elliptic and hyperbolic
// conic sections.
//
// Two solvers are provided, each bound to a single eccentricity:
//
//   - [EllipticSolver]: E - e·sin(E) = M, for 0 ≤ e < 1
//   - [HyperbolicSolver]: e·sinh(H) - H = M, for e > 1
//
// Both follow the same pipeline: range reduction, an analytic seed, a
// bounded refinement loop and, finally, undoing the reduction. The elliptic
// side refines with Laguerre's method; the hyperbolic side seeds from a
// piecewise Pade approximant (or an asymptotic expansion for large M) and
// applies a single Halley correction.
//
// # Example
//
//	s, err := kepler.NewEllipticSolver(0.5)
//	if err != nil {
//	    return err
//	}
//	E := s.Solve(1.0)
//
// # Thread Safety
//
// Solvers are immutable after construction. A single instance may be shared
// across goroutines without locking, and the approximation tables are built
// once at package initialization and never written again.
//
// # Non-finite input
//
// A NaN mean anomaly yields NaN and ±Inf yields the same infinity; neither
// is treated as an error.
package kepler
