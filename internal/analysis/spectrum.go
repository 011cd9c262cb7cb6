package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var (
	ErrTooShort = errors.New("analysis: series too short")
	ErrNoPeak   = errors.New("analysis: no spectral peak")
)

// minSamples is the shortest series DominantPeriod accepts.
const minSamples = 8

// PowerSpectrum returns the magnitudes of the non-negative frequency bins.
func PowerSpectrum(data []float64) []float64 {
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in
// samples taken every dt. The series is de-meaned, Hann windowed and zero
// padded to a power of two for the radix-2 path; the peak bin is refined by fitting a parabola
// to the log magnitudes around it. At least two full cycles are needed for
// a useful estimate.
func DominantPeriod(samples []float64, dt float64) (float64, error) {
	if len(samples) < minSamples {
		return 0, ErrTooShort
	}
	if !(dt > 0) {
		return 0, errors.New("analysis: dt must be positive")
	}

	mean := 0.0
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.New("analysis: non-finite sample")
		}
		mean += v
	}
	mean /= float64(len(samples))

	n := nextPow2(len(samples))
	data := make([]float64, n)
	last := float64(len(samples) - 1)
	for i, v := range samples {
		data[i] = (v - mean) * (0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/last))
	}

	ps := PowerSpectrum(data)
	peak := 0
	for k := 1; k < len(ps); k++ {
		if peak == 0 || ps[k] > ps[peak] {
			peak = k
		}
	}
	if peak == 0 || ps[peak] <= 1e-12*float64(len(samples)) {
		return 0, ErrNoPeak
	}

	bin := float64(peak) + interpolatePeak(ps, peak)
	return float64(n) * dt / bin, nil
}

// interpolatePeak returns the sub-bin offset of the vertex of the parabola
// through the log magnitudes at k-1, k and k+1.
func interpolatePeak(ps []float64, k int) float64 {
	if k < 1 || k+1 >= len(ps) || ps[k-1] <= 0 || ps[k+1] <= 0 {
		return 0
	}
	a, b, c := math.Log(ps[k-1]), math.Log(ps[k]), math.Log(ps[k+1])
	den := a - 2*b + c
	if den == 0 {
		return 0
	}
	return 0.5 * (a - c) / den
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
