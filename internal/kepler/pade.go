package kepler

import "math"

// Hyperbolic anomalies bounding the piecewise Pade intervals, largest first.
// Interval i spans [padeBreakpoints[i+1], padeBreakpoints[i]]; the last
// interval runs down to zero.
var padeBreakpoints = [...]float64{
	40.0 / 8, 38.0 / 8, 34.0 / 8, 30.0 / 8, 26.0 / 8,
	22.0 / 8, 18.0 / 8, 15.0 / 8, 13.0 / 8, 11.0 / 8,
	9.0 / 8, 7.0 / 8, 5.0 / 8, 3.0 / 8, 29.0 / 200,
}

// Expansion point used for each interval.
var padeExpansionPoints = [len(padeBreakpoints)]float64{
	10.0 / 2, 9.0 / 2, 8.0 / 2, 7.0 / 2, 6.0 / 2,
	5.0 / 2, 8.0 / 4, 7.0 / 4, 6.0 / 4, 5.0 / 4,
	4.0 / 4, 3.0 / 4, 2.0 / 4, 1.0 / 4, 0,
}

// padeTerm holds the [3/2] Pade approximant of sinh(a + x) in x:
//
//	sinh(a + x) ≈ (sinh a + p1·x + p2·x² + p3·x³) / (1 + q1·x + q2·x²)
type padeTerm struct {
	a, sinhA   float64
	p1, p2, p3 float64
	q1, q2     float64

	// upper end of the interval in H
	breakpointH float64
}

// padeTerms depends on nothing but the constants above, so it is built once
// and shared read-only by every HyperbolicSolver.
var padeTerms = buildPadeTerms()

func buildPadeTerms() [len(padeBreakpoints)]padeTerm {
	var terms [len(padeBreakpoints)]padeTerm
	for i, a := range padeExpansionPoints {
		terms[i] = newPadeTerm(a)
		terms[i].breakpointH = padeBreakpoints[i]
	}
	return terms
}

func newPadeTerm(a float64) padeTerm {
	sa, ca := math.Sinh(a), math.Cosh(a)
	d1 := ca*ca + 3
	d2 := sa*sa + 4
	return padeTerm{
		a:     a,
		sinhA: sa,
		p1:    ca * (3*ca*ca + 17) / (5 * d1),
		p2:    sa * (3*sa*sa + 28) / (20 * d2),
		p3:    ca * (ca*ca + 27) / (60 * d1),
		q1:    -2 * ca * sa / (5 * d1),
		q2:    (sa*sa - 4) / (20 * d2),
	}
}

// cubic returns the coefficients, highest power first, of
// e·P(x) - (a + x + m)·Q(x), whose small root x gives H ≈ a + x.
func (t padeTerm) cubic(e, m float64) [4]float64 {
	shift := m + t.a
	return [4]float64{
		e*t.p3 - t.q2,
		e*t.p2 - shift*t.q2 - t.q1,
		e*t.p1 - shift*t.q1 - 1,
		e*t.sinhA - shift,
	}
}

const (
	cubicTolerance     = 1e-9
	maxCubicIterations = 16
)

// solveCubic runs Halley's method on c[0]x³ + c[1]x² + c[2]x + c[3] from x.
func solveCubic(c [4]float64, x float64) float64 {
	for i := 0; i < maxCubicIterations; i++ {
		f := ((c[0]*x+c[1])*x+c[2])*x + c[3]
		fp := (3*c[0]*x+2*c[1])*x + c[2]
		fpp := 6*c[0]*x + 2*c[1]
		delta := halleyDelta(f, fp, fpp)
		x -= delta
		if math.Abs(delta) < cubicTolerance {
			break
		}
	}
	return x
}

// halleyDelta is the Halley correction f / (f' - f·f''/(2f')). It divides
// before multiplying so that f' and f'' near the float64 limit stay finite.
// When the denominator degenerates it falls back to the Newton step.
func halleyDelta(f, fp, fpp float64) float64 {
	if fp == 0 {
		return 0
	}
	r := f / fp
	den := 1 - 0.5*r*(fpp/fp)
	if !(den > 0) || math.IsInf(den, 0) {
		return r
	}
	return r / den
}

// expLimit is just under the argument at which math.Exp overflows.
const expLimit = 709.0

// sinhCosh matches math.Sinh and math.Cosh, except beyond expLimit, where
// those overflow through Exp(x)/2 while the result is still representable.
func sinhCosh(x float64) (sh, ch float64) {
	if math.Abs(x) < expLimit {
		return math.Sinh(x), math.Cosh(x)
	}
	h := math.Exp(math.Abs(x) - math.Ln2)
	return math.Copysign(h, x), h
}
