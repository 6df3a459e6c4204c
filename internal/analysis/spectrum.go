package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// Pair names for the three pairwise separations, in physics.Separations order.
var Pairs = []string{"r12", "r13", "r23"}

// Spectrum is a one-sided power spectrum. Frequencies are in cycles per
// unit time.
type Spectrum struct {
	Frequencies []float64
	Power       []float64
}

// PowerSpectrum computes the Hann-windowed power spectrum of a uniformly
// sampled series. The mean is removed first so the DC bin carries no
// offset.
func PowerSpectrum(samples []float64, dt float64) Spectrum {
	n := len(samples)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range samples {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	coeffs := fft.FFTReal(x)
	half := n/2 + 1
	s := Spectrum{
		Frequencies: make([]float64, half),
		Power:       make([]float64, half),
	}
	for k := 0; k < half; k++ {
		s.Frequencies[k] = float64(k) / (float64(n) * dt)
		a := cmplx.Abs(coeffs[k])
		s.Power[k] = a * a
	}
	return s
}

// DominantFrequency returns the frequency of the strongest non-DC bin, or 0
// if the spectrum has none.
func (s Spectrum) DominantFrequency() float64 {
	best, bestPower := 0, 0.0
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > bestPower {
			best, bestPower = k, s.Power[k]
		}
	}
	if best == 0 {
		return 0
	}
	return s.Frequencies[best]
}

// DominantPeriod is 1/DominantFrequency, or +Inf for a flat series.
func (s Spectrum) DominantPeriod() float64 {
	f := s.DominantFrequency()
	if f == 0 {
		return math.Inf(1)
	}
	return 1 / f
}

// SeparationSeries extracts one pairwise distance from every record.
func SeparationSeries(recs []record.Record, pair string) ([]float64, error) {
	idx := -1
	for i, p := range Pairs {
		if p == pair {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown pair %q (available: %v)", pair, Pairs)
	}

	out := make([]float64, len(recs))
	for i, r := range recs {
		out[i] = physics.Separations(r.State)[idx]
	}
	return out, nil
}

// SampleInterval is the time between consecutive records, or 0 if there are
// fewer than two.
func SampleInterval(recs []record.Record) float64 {
	if len(recs) < 2 {
		return 0
	}
	return (recs[len(recs)-1].Time - recs[0].Time) / float64(len(recs)-1)
}
