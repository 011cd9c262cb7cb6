package kepler

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Regime names the seed used for a hyperbolic solve.
type Regime int

const (
	// RegimePade covers mean anomalies up to e·sinh(5) - 5.
	RegimePade Regime = iota
	// RegimeAsymptotic covers everything above, out to M → ∞.
	RegimeAsymptotic
)

func (r Regime) String() string {
	switch r {
	case RegimePade:
		return "pade"
	case RegimeAsymptotic:
		return "asymptotic"
	default:
		return fmt.Sprintf("Regime(%d)", int(r))
	}
}

// HyperbolicSolver solves e·sinh(H) - H = M for a fixed eccentricity e > 1.
type HyperbolicSolver struct {
	eccentricity float64

	// meanBreakpoints[i] = e·sinh(padeBreakpoints[i]) - padeBreakpoints[i],
	// derived from eccentricity at construction.
	meanBreakpoints [len(padeBreakpoints)]float64
}

// NewHyperbolicSolver validates e and precomputes its region thresholds.
func NewHyperbolicSolver(eccentricity float64) (*HyperbolicSolver, error) {
	if !validHyperbolic(eccentricity) {
		return nil, &DomainError{Orbit: "hyperbolic", Eccentricity: eccentricity}
	}
	s := &HyperbolicSolver{eccentricity: eccentricity}
	for i, h := range padeBreakpoints {
		s.meanBreakpoints[i] = eccentricity*math.Sinh(h) - h
	}
	return s, nil
}

func validHyperbolic(e float64) bool {
	return isFinite(e) && e > 1
}

func (s *HyperbolicSolver) Eccentricity() float64 { return s.eccentricity }

// Threshold is the mean anomaly separating the Pade and asymptotic regimes.
func (s *HyperbolicSolver) Threshold() float64 {
	return s.meanBreakpoints[0]
}

// Classify picks the seed regime for |M|.
func (s *HyperbolicSolver) Classify(meanAnomaly float64) Regime {
	if math.Abs(meanAnomaly) <= s.meanBreakpoints[0] {
		return RegimePade
	}
	return RegimeAsymptotic
}

// Solve returns the hyperbolic anomaly for meanAnomaly.
func (s *HyperbolicSolver) Solve(meanAnomaly float64) float64 {
	return s.SolveResult(meanAnomaly).Anomaly
}

// SolveResult is Solve with iteration count, residual and status attached.
// Convergence is judged on |f| < Tolerance·max(1, |M|).
func (s *HyperbolicSolver) SolveResult(meanAnomaly float64) Result {
	if !isFinite(meanAnomaly) {
		return nonFinite(meanAnomaly)
	}

	m, sign := splitSign(meanAnomaly)
	r := refineHalley(s.eccentricity, m, s.seed(m), MaxHyperbolicIterations)
	r.Anomaly *= sign
	r.Residual *= sign
	return r
}

func (s *HyperbolicSolver) seed(m float64) float64 {
	if s.Classify(m) == RegimeAsymptotic {
		return asymptoticSeed(s.eccentricity, m)
	}
	return s.padeSeed(m)
}

// padeInterval returns the index of the Pade interval containing m >= 0.
func (s *HyperbolicSolver) padeInterval(m float64) int {
	i := 0
	for i < len(s.meanBreakpoints)-1 && m < s.meanBreakpoints[i+1] {
		i++
	}
	return i
}

func (s *HyperbolicSolver) padeSeed(m float64) float64 {
	term := padeTerms[s.padeInterval(m)]
	x0 := 0.0
	if term.a == 0 {
		// H ≈ M/(e-1) to first order; the cubic term only pulls the root
		// lower, so starting here approaches it from above.
		x0 = math.Min(m/(s.eccentricity-1), term.breakpointH)
	}
	return term.a + solveCubic(term.cubic(s.eccentricity, m), x0)
}

// asymptoticSeed expands around H = ln(2M/e), where e·sinh(H) ≈ M, and adds
// a third-order correction. sinh and cosh of that point are M/e ∓ e/(4M),
// written so that no intermediate overflows for M up to the float64 limit.
func asymptoticSeed(e, m float64) float64 {
	h := math.Log(m/e) + math.Ln2
	q := e / m / 4
	sh := m/e - q
	ch := m/e + q

	fp := e*ch - 1
	d := (e*q + h) / fp
	k := e * sh / fp
	c := e * ch / fp

	delta := (6*d + 3*k*d*d) / (6 + 6*k*d + c*d*d)
	return h + delta
}

// refineHalley takes one unconditional Halley step from H, then keeps
// correcting while the residual is above threshold, up to maxIter steps.
func refineHalley(e, m, H float64, maxIter int) Result {
	limit := Tolerance * math.Max(1, m)
	sh, ch := sinhCosh(H)
	f := e*sh - H - m
	for i := 0; ; i++ {
		if i > 0 && math.Abs(f) < limit {
			return Result{Anomaly: H, Iterations: i, Residual: f, Status: StatusConverged}
		}
		if i >= maxIter {
			return Result{Anomaly: H, Iterations: i, Residual: f, Status: StatusCapped}
		}
		H -= halleyDelta(f, e*ch-1, e*sh)
		sh, ch = sinhCosh(H)
		f = e*sh - H - m
	}
}

func (s *HyperbolicSolver) MarshalJSON() ([]byte, error) {
	return json.Marshal(solverConfig{Eccentricity: s.eccentricity})
}

func (s *HyperbolicSolver) UnmarshalJSON(data []byte) error {
	var cfg solverConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	return s.restore(cfg)
}

func (s *HyperbolicSolver) MarshalYAML() (interface{}, error) {
	return solverConfig{Eccentricity: s.eccentricity}, nil
}

func (s *HyperbolicSolver) UnmarshalYAML(node *yaml.Node) error {
	var cfg solverConfig
	if err := node.Decode(&cfg); err != nil {
		return err
	}
	return s.restore(cfg)
}

func (s *HyperbolicSolver) restore(cfg solverConfig) error {
	v, err := NewHyperbolicSolver(cfg.Eccentricity)
	if err != nil {
		return fmt.Errorf("decode hyperbolic solver: %w", err)
	}
	*s = *v
	return nil
}
