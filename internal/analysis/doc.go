// Package analysis recovers orbital periods from sampled trajectories.
//
// [DominantPeriod] finds the strongest oscillation in a uniformly sampled
// series, such as a body's distance from the attractor over a stored run.
// Comparing it with the closed-form period is a cheap end-to-end check on
// propagation and storage:
//
//	est, err := analysis.DominantPeriod(radius, meta.Dt)
//	rel := math.Abs(est-prop.Period()) / prop.Period()
package analysis
