// Package dynamo provides the state and system primitives shared by the
// propagation and integration layers.
//
//   - [State]: vector representing a body's state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical integrator interface
//   - [Observer]: per-step callback used by the simulator
//
// Analytic propagation (package orbit) and numerical integration
// (package integrators) both produce [State] values, which lets the two be
// compared directly.
//
// # Parallelism
//
// [ParallelFor] splits an index range across goroutines. Callers must make
// sure fn only touches indices inside its own [start, end) slice.
package dynamo
