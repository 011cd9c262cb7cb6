package orbit_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/kepler/internal/dynamo"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/orbit"
)

var inclined = orbit.Elements{
	SemiMajorAxis: 1.5,
	Eccentricity:  0.3,
	Inclination:   0.4,
	RAAN:          1.1,
	ArgPeriapsis:  -0.7,
	MeanAnomaly:   0,
	Mu:            1,
}

var flyby = orbit.Elements{
	SemiMajorAxis: 1,
	Eccentricity:  1.5,
	Inclination:   0.2,
	RAAN:          0.3,
	ArgPeriapsis:  2.0,
	MeanAnomaly:   -0.5,
	Mu:            1,
}

func distance(a, b dynamo.State) float64 {
	return a.Sub(b).Norm()
}

// integrate steps as close to duration as dt allows and returns the state
// with the time actually reached.
func integrate(integ dynamo.Integrator, mu float64, x dynamo.State, duration, dt float64) (dynamo.State, float64) {
	sys := orbit.NewTwoBody(mu)
	steps := int(math.Round(duration / dt))
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}
	return x, float64(steps) * dt
}

var _ = Describe("Elements", func() {
	It("rejects out-of-range values", func() {
		bad := inclined
		bad.SemiMajorAxis = -1
		Expect(errors.Is(bad.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())

		bad = inclined
		bad.Mu = 0
		Expect(errors.Is(bad.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())

		bad = inclined
		bad.RAAN = math.NaN()
		Expect(errors.Is(bad.Validate(), dynamo.ErrParameterBounds)).To(BeTrue())

		bad = inclined
		bad.Eccentricity = 1
		var de *kepler.DomainError
		Expect(errors.As(bad.Validate(), &de)).To(BeTrue())
		Expect(de.Orbit).To(Equal("parabolic"))

		bad.Eccentricity = -0.2
		Expect(errors.Is(bad.Validate(), kepler.ErrDomain)).To(BeTrue())

		_, err := orbit.NewPropagator(bad)
		Expect(err).To(HaveOccurred())
	})

	It("round-trips through a Cartesian state", func() {
		for _, el := range []orbit.Elements{inclined, flyby} {
			p, err := orbit.NewPropagator(el)
			Expect(err).NotTo(HaveOccurred())

			x, _ := p.At(0)
			back, err := orbit.ElementsFromState(x, el.Mu)
			Expect(err).NotTo(HaveOccurred())

			Expect(back.SemiMajorAxis).To(BeNumerically("~", el.SemiMajorAxis, 1e-9))
			Expect(back.Eccentricity).To(BeNumerically("~", el.Eccentricity, 1e-9))
			Expect(back.Inclination).To(BeNumerically("~", el.Inclination, 1e-9))
			Expect(back.RAAN).To(BeNumerically("~", el.RAAN, 1e-9))
			Expect(back.ArgPeriapsis).To(BeNumerically("~", el.ArgPeriapsis, 1e-9))
			Expect(back.MeanAnomaly).To(BeNumerically("~", el.MeanAnomaly, 1e-9))
		}
	})

	It("pins degenerate angles for circular equatorial orbits", func() {
		x := dynamo.State{0, 2, 0, -math.Sqrt(0.5), 0, 0}
		el, err := orbit.ElementsFromState(x, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(el.Eccentricity).To(BeNumerically("<", 1e-12))
		Expect(el.RAAN).To(Equal(0.0))
		Expect(el.ArgPeriapsis).To(Equal(0.0))
		Expect(el.MeanAnomaly).To(BeNumerically("~", math.Pi/2, 1e-12))
	})

	It("refuses invalid states", func() {
		_, err := orbit.ElementsFromState(dynamo.State{1, 0, 0}, 1)
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())

		_, err = orbit.ElementsFromState(dynamo.State{1, 0, 0, 2, 0, 0}, 1)
		Expect(errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
	})
})

var _ = Describe("Propagator", func() {
	It("starts at periapsis when the mean anomaly is zero", func() {
		el := inclined
		el.Inclination, el.RAAN, el.ArgPeriapsis = 0, 0, 0
		p, err := orbit.NewPropagator(el)
		Expect(err).NotTo(HaveOccurred())

		x, res := p.At(0)
		Expect(res.Converged()).To(BeTrue())
		Expect(x[0]).To(BeNumerically("~", el.SemiMajorAxis*(1-el.Eccentricity), 1e-12))
		Expect(x[1]).To(BeNumerically("~", 0, 1e-12))
		Expect(x[3]).To(BeNumerically("~", 0, 1e-12))
	})

	It("conserves energy and angular momentum", func() {
		for _, el := range []orbit.Elements{inclined, flyby} {
			p, err := orbit.NewPropagator(el)
			Expect(err).NotTo(HaveOccurred())

			x0, _ := p.At(0)
			h0 := orbit.AngularMomentum(x0)
			for t := -20.0; t <= 20; t += 0.37 {
				x, res := p.At(t)
				Expect(res.Converged()).To(BeTrue())
				Expect(orbit.Energy(x, el.Mu)).To(BeNumerically("~", p.SpecificEnergy(), 1e-9))
				h := orbit.AngularMomentum(x)
				for k := range h {
					Expect(h[k]).To(BeNumerically("~", h0[k], 1e-9))
				}
			}
		}
	})

	It("repeats after one period for closed orbits", func() {
		p, err := orbit.NewPropagator(inclined)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Period()).To(BeNumerically("~", 2*math.Pi*math.Pow(1.5, 1.5), 1e-12))

		x0, _ := p.At(0.8)
		x1, _ := p.At(0.8 + 3*p.Period())
		Expect(distance(x0, x1)).To(BeNumerically("<", 1e-9))
	})

	It("reports open orbits as unbounded", func() {
		p, err := orbit.NewPropagator(flyby)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsInf(p.Period(), 1)).To(BeTrue())
		Expect(p.SpecificEnergy()).To(BeNumerically(">", 0))
	})

	DescribeTable("agrees with numerical integration",
		func(el orbit.Elements, name string, duration, dt, tol float64) {
			p, err := orbit.NewPropagator(el)
			Expect(err).NotTo(HaveOccurred())
			integ, err := integrators.Lookup(name)
			Expect(err).NotTo(HaveOccurred())

			x0, _ := p.At(0)
			got, t := integrate(integ, el.Mu, x0, duration, dt)
			want, _ := p.At(t)
			Expect(distance(got, want)).To(BeNumerically("<", tol))
		},
		Entry("rk4 on an ellipse", inclined, "rk4", 2*math.Pi*math.Pow(1.5, 1.5), 1e-3, 1e-6),
		Entry("verlet on an ellipse", inclined, "verlet", 2*math.Pi*math.Pow(1.5, 1.5), 1e-3, 1e-3),
		Entry("rk4 on a hyperbola", flyby, "rk4", 2.0, 1e-3, 1e-6),
	)
})
