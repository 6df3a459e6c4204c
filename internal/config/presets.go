package config

import (
	"sort"

	"github.com/san-kum/threebody/internal/physics"
)

// Presets are named initial conditions. GetPreset returns copies.
var Presets = map[string]*Config{
	// Unit masses on a right angle, the original command-line defaults with G = 1.
	"default": {
		Name:              "default",
		Masses:            []float64{1, 1, 1},
		InitialPositions:  [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		InitialVelocities: [][]float64{{0, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
		Dt:                0.001, TMax: 10, G: 1,
		Integrator: "rk4", Filename: "three_body_simulation",
	},
	// Chenciner-Montgomery choreography, period ~6.3259.
	"figure8": {
		Name:             "figure8",
		Masses:           []float64{1, 1, 1},
		InitialPositions: [][]float64{{-0.97000436, 0.24308753, 0}, {0.97000436, -0.24308753, 0}, {0, 0, 0}},
		InitialVelocities: [][]float64{
			{0.466203685, 0.43236573, 0},
			{0.466203685, 0.43236573, 0},
			{-0.93240737, -0.86473146, 0},
		},
		Dt: 0.001, TMax: 6.3259, G: 1,
		Integrator: "rk4", Filename: "figure8",
	},
	// Equilateral triangle rotating rigidly with omega^2 = G m / (sqrt(3) R^3).
	"lagrange": {
		Name:             "lagrange",
		Masses:           []float64{1, 1, 1},
		InitialPositions: [][]float64{{0, 1, 0}, {-0.8660254038, -0.5, 0}, {0.8660254038, -0.5, 0}},
		InitialVelocities: [][]float64{
			{-0.7598356857, 0, 0},
			{0.3799178428, -0.6580370064, 0},
			{0.3799178428, 0.6580370064, 0},
		},
		Dt: 0.001, TMax: 10, G: 1,
		Integrator: "rk4", Filename: "lagrange",
	},
	// Burrau's problem: masses 3, 4, 5 at rest on a 3-4-5 triangle.
	"pythagorean": {
		Name:              "pythagorean",
		Masses:            []float64{3, 4, 5},
		InitialPositions:  [][]float64{{1, 3, 0}, {-2, -1, 0}, {1, -1, 0}},
		InitialVelocities: [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		Dt: 0.0001, TMax: 20, G: 1,
		Integrator: "rk4", Filename: "pythagorean",
	},
	// SI units, one year in hourly steps.
	"sun_earth_moon": {
		Name:              "sun_earth_moon",
		Masses:            []float64{1.989e30, 5.972e24, 7.348e22},
		InitialPositions:  [][]float64{{0, 0, 0}, {1.496e11, 0, 0}, {1.496e11 + 3.844e8, 0, 0}},
		InitialVelocities: [][]float64{{0, 0, 0}, {0, 29780, 0}, {0, 29780 + 1022, 0}},
		Dt: 3600, TMax: 3.15576e7, G: physics.DefaultG,
		Integrator: "rk4", Filename: "sun_earth_moon_simulation",
		BodyNames: []string{"Sun", "Earth", "Moon"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
