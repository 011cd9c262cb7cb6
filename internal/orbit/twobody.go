package orbit

import (
	"math"

	"github.com/san-kum/kepler/internal/dynamo"
)

// TwoBody is the point-mass gravity field as an ODE system on
// [x, y, z, vx, vy, vz].
type TwoBody struct {
	Mu float64
}

var (
	_ dynamo.System      = (*TwoBody)(nil)
	_ dynamo.Hamiltonian = (*TwoBody)(nil)
)

func NewTwoBody(mu float64) *TwoBody {
	return &TwoBody{Mu: mu}
}

func (tb *TwoBody) StateDim() int { return 6 }

func (tb *TwoBody) Derive(x dynamo.State, t float64) dynamo.State {
	r2 := x[0]*x[0] + x[1]*x[1] + x[2]*x[2]
	k := -tb.Mu / (r2 * math.Sqrt(r2))
	return dynamo.State{x[3], x[4], x[5], k * x[0], k * x[1], k * x[2]}
}

func (tb *TwoBody) Energy(x dynamo.State) float64 {
	return Energy(x, tb.Mu)
}

// Energy is the specific orbital energy v²/2 - μ/r.
func Energy(x dynamo.State, mu float64) float64 {
	r := vec3{x[0], x[1], x[2]}.norm()
	v := vec3{x[3], x[4], x[5]}
	return 0.5*v.dot(v) - mu/r
}

// AngularMomentum is the specific angular momentum r × v.
func AngularMomentum(x dynamo.State) [3]float64 {
	return vec3{x[0], x[1], x[2]}.cross(vec3{x[3], x[4], x[5]})
}
