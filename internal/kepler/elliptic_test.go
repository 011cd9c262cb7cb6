package kepler

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewEllipticSolver_Domain(t *testing.T) {
	valid := []float64{0, 1e-12, 0.5, 0.999999}
	for _, e := range valid {
		s, err := NewEllipticSolver(e)
		require.NoError(t, err, "e=%g", e)
		assert.Equal(t, e, s.Eccentricity())
	}

	invalid := []float64{1, -0.1, 1.5, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, e := range invalid {
		_, err := NewEllipticSolver(e)
		require.Error(t, err, "e=%g", e)
		assert.True(t, errors.Is(err, ErrDomain), "e=%g: %v", e, err)

		var de *DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "elliptic", de.Orbit)
	}
}

func TestLaguerreSign(t *testing.T) {
	assert.Equal(t, 1.0, laguerreSign(0.3))
	assert.Equal(t, 1.0, laguerreSign(0))
	assert.Equal(t, -1.0, laguerreSign(-2))
}

func TestLaguerreDelta_Linear(t *testing.T) {
	// With f'' = 0 the Laguerre step reduces to Newton's.
	delta := laguerreDelta(0.5, 2, 0)
	assert.InDelta(t, -0.25, delta, 1e-15)
}

func TestEllipticSeed_Bounds(t *testing.T) {
	for _, e := range []float64{0.01, 0.5, 0.9, 0.999999} {
		assert.Equal(t, 0.0, ellipticSeed(e, 0))
		assert.InDelta(t, math.Pi, ellipticSeed(e, math.Pi), 1e-12)

		for m := 0.1; m < math.Pi; m += 0.1 {
			seed := ellipticSeed(e, m)
			assert.GreaterOrEqual(t, seed, m, "seed below M for e=%g m=%g", e, m)
			assert.LessOrEqual(t, seed, math.Pi, "seed beyond π for e=%g m=%g", e, m)
		}
	}
}

func TestReduceAngle(t *testing.T) {
	cases := []struct {
		m       float64
		reduced float64
	}{
		{0, 0},
		{1, 1},
		{-1, -1},
		{2 * math.Pi, 0},
		{3*math.Pi/2 + 4*math.Pi, -math.Pi / 2},
	}
	for _, tc := range cases {
		r, off := reduceAngle(tc.m)
		assert.InDelta(t, tc.reduced, r, 1e-12, "m=%g", tc.m)
		assert.LessOrEqual(t, math.Abs(r), math.Pi)
		assert.InDelta(t, tc.m, r+off, 1e-12)
	}

	r1, o1 := reduceAngle(17.3)
	r2, o2 := reduceAngle(-17.3)
	assert.Equal(t, -r1, r2)
	assert.Equal(t, -o1, o2)
}

func TestRefineLaguerre_Capped(t *testing.T) {
	r := refineLaguerre(0.9, 1.0, 3.0, 0)
	assert.Equal(t, StatusCapped, r.Status)
	assert.Equal(t, 0, r.Iterations)
	assert.True(t, errors.Is(r.Err(), ErrNonConvergence))
}

func TestEllipticSolver_CircularIsIdentity(t *testing.T) {
	s, err := NewEllipticSolver(0)
	require.NoError(t, err)
	for _, m := range []float64{0, 0.3, -2, math.Pi, 17, -1e6} {
		assert.Equal(t, m, s.Solve(m))
	}
}

func TestEllipticSolver_Concrete(t *testing.T) {
	s, err := NewEllipticSolver(0.5)
	require.NoError(t, err)

	r := s.SolveResult(1.0)
	require.True(t, r.Converged(), "status %s", r.Status)
	assert.InDelta(t, 1.4987011335, r.Anomaly, 1e-8)
	assert.Less(t, math.Abs(r.Anomaly-0.5*math.Sin(r.Anomaly)-1.0), Tolerance)
	assert.NoError(t, r.Err())
}

func TestEllipticSolver_NonFinite(t *testing.T) {
	s, err := NewEllipticSolver(0.3)
	require.NoError(t, err)

	r := s.SolveResult(math.NaN())
	assert.True(t, math.IsNaN(r.Anomaly))
	assert.Equal(t, StatusNonFinite, r.Status)

	assert.True(t, math.IsInf(s.Solve(math.Inf(1)), 1))
	assert.True(t, math.IsInf(s.Solve(math.Inf(-1)), -1))
}

func TestEllipticSolver_JSONRoundTrip(t *testing.T) {
	s, err := NewEllipticSolver(0.25)
	require.NoError(t, err)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"eccentricity":0.25}`, string(data))

	var back EllipticSolver
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0.25, back.Eccentricity())

	err = json.Unmarshal([]byte(`{"eccentricity":1.5}`), &back)
	assert.True(t, errors.Is(err, ErrDomain))
}

func TestEllipticSolver_YAMLRoundTrip(t *testing.T) {
	s, err := NewEllipticSolver(0.75)
	require.NoError(t, err)

	data, err := yaml.Marshal(s)
	require.NoError(t, err)

	var back EllipticSolver
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, s.Solve(2.0), back.Solve(2.0))

	err = yaml.Unmarshal([]byte("eccentricity: -1\n"), &back)
	assert.True(t, errors.Is(err, ErrDomain))
}

func TestNew_PicksSolver(t *testing.T) {
	s, err := New(0.4)
	require.NoError(t, err)
	assert.IsType(t, &EllipticSolver{}, s)

	s, err = New(3)
	require.NoError(t, err)
	assert.IsType(t, &HyperbolicSolver{}, s)

	_, err = New(1)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "parabolic", de.Orbit)

	_, err = New(math.NaN())
	assert.True(t, errors.Is(err, ErrDomain))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "converged", StatusConverged.String())
	assert.Equal(t, "capped", StatusCapped.String())
	assert.Equal(t, "non-finite", StatusNonFinite.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
