package integrators

import "github.com/san-kum/kepler/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme. Stage buffers are
// reused between steps, so an RK4 value must not be shared by goroutines.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k[0], dyn.Derive(x, t))
	for stage, frac := range [3]float64{0.5, 0.5, 1} {
		for i := 0; i < n; i++ {
			r.scratch[i] = x[i] + frac*dt*r.k[stage][i]
		}
		copy(r.k[stage+1], dyn.Derive(r.scratch, t+frac*dt))
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return result
}

// Euler is forward Euler. Only useful as a baseline in comparisons.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
