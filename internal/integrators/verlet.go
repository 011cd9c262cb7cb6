package integrators

import "github.com/san-kum/kepler/internal/dynamo"

// Verlet is velocity Verlet for states laid out as [positions..., velocities...].
// The derivative's second half is taken as the acceleration.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	acc := dyn.Derive(x, t)
	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*acc[half+i]*dt*dt
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	accNew := dyn.Derive(v.scratch, t+dt)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + 0.5*dt*(acc[half+i]+accNew[half+i])
	}
	return result
}

// Leapfrog is the kick-drift-kick form. Same layout as Verlet.
type Leapfrog struct {
	scratch dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	acc := dyn.Derive(x, t)
	for i := 0; i < half; i++ {
		kick := x[half+i] + 0.5*dt*acc[half+i]
		l.scratch[half+i] = kick
		result[i] = x[i] + kick*dt
		l.scratch[i] = result[i]
	}

	accNew := dyn.Derive(l.scratch, t+dt)
	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + 0.5*dt*accNew[half+i]
	}
	return result
}
