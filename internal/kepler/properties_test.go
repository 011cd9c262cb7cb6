package kepler_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kepler/internal/kepler"
)

// slack absorbs the rounding between the reduced residual the solver checks
// and the one recomputed here on the caller's mean anomaly.
const slack = 1e-12

func ellipticResidual(e, E, m float64) float64 {
	return math.Abs(E - e*math.Sin(E) - m)
}

func hyperbolicResidual(e, H, m float64) float64 {
	return math.Abs(e*math.Sinh(H) - H - m)
}

func hyperbolicLimit(m float64) float64 {
	return kepler.Tolerance*math.Max(1, math.Abs(m)) + slack
}

// bisect finds the root of a monotonically increasing f on [lo, hi].
func bisect(f func(float64) float64, lo, hi float64) float64 {
	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if f(mid) > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0.5 * (lo + hi)
}

var ellipticEccentricities = []float64{0, 0.01, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99, 0.999, 0.999999, 1 - 1e-9}

var hyperbolicEccentricities = []float64{1 + 1e-9, 1.000001, 1.001, 1.01, 1.1, 1.5, 2, 5, 10, 100, 1000}

func meanAnomalyGrid() []float64 {
	var ms []float64
	for i := -200; i <= 200; i++ {
		ms = append(ms, float64(i)*0.05)
	}
	return append(ms, 1e-12, 1e-6, math.Pi, -math.Pi, 1e4, -1e4)
}

var _ = Describe("EllipticSolver", func() {
	It("keeps the residual below tolerance across the domain", func() {
		for _, e := range ellipticEccentricities {
			s, err := kepler.NewEllipticSolver(e)
			Expect(err).NotTo(HaveOccurred())
			for _, m := range meanAnomalyGrid() {
				r := s.SolveResult(m)
				Expect(r.Status).To(Equal(kepler.StatusConverged), "e=%g m=%g", e, m)
				Expect(r.Iterations).To(BeNumerically("<=", kepler.MaxEllipticIterations))
				Expect(ellipticResidual(e, r.Anomaly, m)).To(BeNumerically("<", kepler.Tolerance+slack), "e=%g m=%g", e, m)
			}
		}
	})

	It("recovers E from M = E - e·sin(E)", func() {
		for _, e := range []float64{0.01, 0.1, 0.5, 0.9, 0.99} {
			s, _ := kepler.NewEllipticSolver(e)
			for i := -63; i <= 63; i++ {
				E := float64(i) * 0.1
				m := E - e*math.Sin(E)
				Expect(s.Solve(m)).To(BeNumerically("~", E, 1e-7), "e=%g E=%g", e, E)
			}
		}
	})

	It("is odd in the mean anomaly", func() {
		for _, e := range ellipticEccentricities {
			s, _ := kepler.NewEllipticSolver(e)
			for _, m := range meanAnomalyGrid() {
				Expect(s.Solve(-m)).To(Equal(-s.Solve(m)), "e=%g m=%g", e, m)
			}
		}
	})

	It("returns M unchanged for a circular orbit", func() {
		s, _ := kepler.NewEllipticSolver(0)
		for _, m := range meanAnomalyGrid() {
			Expect(s.Solve(m)).To(Equal(m))
		}
	})

	It("converges for near-parabolic eccentricities", func() {
		for _, e := range []float64{0.9999, 0.999999, 1 - 1e-12} {
			s, _ := kepler.NewEllipticSolver(e)
			for _, m := range []float64{1e-9, 1e-6, 1e-3, 0.01, 0.1, 1, 3} {
				r := s.SolveResult(m)
				Expect(r.Converged()).To(BeTrue(), "e=%g m=%g", e, m)
				Expect(ellipticResidual(e, r.Anomaly, m)).To(BeNumerically("<", kepler.Tolerance+slack))
			}
		}
	})

	It("agrees with bisection", func() {
		for _, e := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
			s, _ := kepler.NewEllipticSolver(e)
			for m := 0.0; m < 2*math.Pi; m += 0.25 {
				want := bisect(func(E float64) float64 { return E - e*math.Sin(E) - m }, m-1, m+1)
				Expect(s.Solve(m)).To(BeNumerically("~", want, 1e-8), "e=%g m=%g", e, m)
			}
		}
	})

	It("rejects eccentricities outside [0, 1)", func() {
		for _, e := range []float64{1.0, -0.1, math.NaN(), math.Inf(1)} {
			_, err := kepler.NewEllipticSolver(e)
			Expect(errors.Is(err, kepler.ErrDomain)).To(BeTrue(), "e=%g", e)
		}
	})
})

var _ = Describe("HyperbolicSolver", func() {
	grid := func() []float64 {
		ms := []float64{0, 1e-12, 1e-9, 1e-6, 1e-3, 0.01, 0.1, 0.5, 1, 2, 5, 10, 50, 69, 70, 100, 1e3, 1e4, 1e6}
		for i := 0; i < 100; i++ {
			x := float64(i)
			ms = append(ms, x*x/100)
		}
		return ms
	}()

	It("keeps the scaled residual below tolerance", func() {
		for _, e := range hyperbolicEccentricities {
			s, err := kepler.NewHyperbolicSolver(e)
			Expect(err).NotTo(HaveOccurred())
			for _, m := range grid {
				for _, signed := range []float64{m, -m} {
					r := s.SolveResult(signed)
					Expect(r.Status).To(Equal(kepler.StatusConverged), "e=%g m=%g", e, signed)
					Expect(hyperbolicResidual(e, r.Anomaly, signed)).To(BeNumerically("<", hyperbolicLimit(signed)), "e=%g m=%g", e, signed)
				}
			}
		}
	})

	It("needs a single Halley step across the tested domain", func() {
		for _, e := range hyperbolicEccentricities {
			s, _ := kepler.NewHyperbolicSolver(e)
			for _, m := range grid {
				Expect(s.SolveResult(m).Iterations).To(Equal(1), "e=%g m=%g", e, m)
			}
		}
	})

	It("recovers H from M = e·sinh(H) - H", func() {
		for _, e := range []float64{1.1, 1.5, 2, 5, 10} {
			s, _ := kepler.NewHyperbolicSolver(e)
			for i := -32; i <= 32; i++ {
				H := float64(i) * 0.25
				m := e*math.Sinh(H) - H
				Expect(s.Solve(m)).To(BeNumerically("~", H, 1e-8), "e=%g H=%g", e, H)
			}
		}
	})

	It("is odd in the mean anomaly", func() {
		for _, e := range hyperbolicEccentricities {
			s, _ := kepler.NewHyperbolicSolver(e)
			for _, m := range grid {
				Expect(s.Solve(-m)).To(Equal(-s.Solve(m)))
			}
		}
	})

	It("stays accurate far into the asymptotic regime", func() {
		for _, e := range []float64{1.000001, 1.5, 30} {
			s, _ := kepler.NewHyperbolicSolver(e)
			for _, m := range []float64{1e5, 1e8, 1e12} {
				m = math.Max(m, 2*s.Threshold())
				Expect(s.Classify(m)).To(Equal(kepler.RegimeAsymptotic))
				r := s.SolveResult(m)
				Expect(r.Converged()).To(BeTrue())
				Expect(hyperbolicResidual(e, r.Anomaly, m)).To(BeNumerically("<", hyperbolicLimit(m)))
			}
		}
	})

	It("stays finite up to the float64 limit", func() {
		for _, e := range []float64{1 + 1e-15, 1.0001, 2, 1e3, 1e12} {
			s, _ := kepler.NewHyperbolicSolver(e)
			for _, m := range []float64{1e160, 1e200, 1e300, 1.7e308} {
				r := s.SolveResult(m)
				Expect(r.Converged()).To(BeTrue(), "e=%g m=%g status=%s", e, m, r.Status)
				Expect(math.IsNaN(r.Anomaly) || math.IsInf(r.Anomaly, 0)).To(BeFalse())
				Expect(math.Abs(r.Residual)).To(BeNumerically("<", hyperbolicLimit(m)))
				// e·sinh(H) ≈ M here, so H ≈ ln(2M/e).
				Expect(r.Anomaly).To(BeNumerically("~", math.Log(m/e)+math.Ln2, 1e-9))
				Expect(s.Solve(-m)).To(Equal(-r.Anomaly))
			}
		}
	})

	It("agrees with bisection", func() {
		for _, e := range []float64{1.01, 1.5, 3} {
			s, _ := kepler.NewHyperbolicSolver(e)
			for _, m := range []float64{0.01, 0.3, 1, 4, 20, 150, 1000} {
				want := bisect(func(H float64) float64 { return e*math.Sinh(H) - H - m }, 0, 50)
				Expect(s.Solve(m)).To(BeNumerically("~", want, 1e-8*math.Max(1, want)), "e=%g m=%g", e, m)
			}
		}
	})

	It("rejects eccentricities at or below one", func() {
		for _, e := range []float64{1.0, 0.5, math.NaN(), math.Inf(-1)} {
			_, err := kepler.NewHyperbolicSolver(e)
			Expect(errors.Is(err, kepler.ErrDomain)).To(BeTrue(), "e=%g", e)
		}
	})
})
