// Package analysis characterizes stored or freshly integrated three-body
// trajectories.
//
//   - [PowerSpectrum]: Hann-windowed spectrum of a sampled series, e.g. a
//     pairwise separation from [SeparationSeries]
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: one growth rate per perturbed state component
//   - [Divergence]: log separation of two nearby runs over time
//   - [PhasePortrait]: two record columns against each other
//   - [PoincareSection]: upward crossings of a column through a threshold
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	lambda := analysis.LyapunovExponent(sys, integ, sys.State(), dt, duration, 1e-8)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
