// Package orbit propagates two-body orbits analytically.
//
// A [Propagator] turns classical [Elements] and a time since epoch into a
// Cartesian state [x, y, z, vx, vy, vz] by solving Kepler's equation with
// package kepler. [TwoBody] exposes the same problem as a [dynamo.System]
// so numerical integrators can be checked against the closed form.
//
// Units are whatever the caller picks for length and time, as long as Mu
// uses the same ones. Angles are radians.
package orbit
