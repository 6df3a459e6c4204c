package analysis

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent by following a
// reference and a perturbed trajectory, renormalizing their separation back
// to the initial distance after every step (Benettin's method). A positive
// value indicates chaos.
//
// The perturbation is applied to component 0 (x of body 1).
func LyapunovExponent(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 || perturbation == 0 {
		return 0
	}

	xp := x0.Clone()
	xp[0] += perturbation
	return lyapunovForPerturbation(dyn, integ, x0, xp, dt, duration)
}

// LyapunovSpectrum perturbs each state component independently and returns
// one growth-rate estimate per component.
func LyapunovSpectrum(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) []float64 {
	n := len(x0)
	spectrum := make([]float64, n)
	if perturbation == 0 {
		return spectrum
	}

	for i := 0; i < n; i++ {
		xp := x0.Clone()
		xp[i] += perturbation
		spectrum[i] = lyapunovForPerturbation(dyn, integ, x0, xp, dt, duration)
	}
	return spectrum
}

func lyapunovForPerturbation(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0, x0p dynamo.State,
	dt, duration float64,
) float64 {
	x := x0.Clone()
	xp := x0p.Clone()
	d0 := xp.Sub(x).Norm()

	steps := dynamo.Config{Dt: dt, Duration: duration}.Steps()
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dt)
		xp = integ.Step(dyn, xp, dt)

		delta := xp.Sub(x)
		sep := delta.Norm()
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}

		sumLog += math.Log(sep / d0)
		count++

		xp = x.AddScaled(d0/sep, delta)
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}

// Divergence returns ln(|dx(t)|/|dx(0)|) along two unrenormalized
// trajectories, one value per step. Its slope over the linear region is a
// finite-time Lyapunov estimate.
func Divergence(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) []float64 {
	x := x0.Clone()
	xp := x0.Clone()
	xp[0] += perturbation
	d0 := math.Abs(perturbation)
	if d0 == 0 {
		return nil
	}

	steps := dynamo.Config{Dt: dt, Duration: duration}.Steps()
	out := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, dt)
		xp = integ.Step(dyn, xp, dt)
		out = append(out, math.Log(xp.Sub(x).Norm()/d0))
	}
	return out
}
