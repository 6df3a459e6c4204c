package metrics

import "github.com/san-kum/threebody/internal/sim"

var (
	_ sim.Metric = (*Energy)(nil)
	_ sim.Metric = (*EnergyDrift)(nil)
	_ sim.Metric = (*AngularMomentumDrift)(nil)
	_ sim.Metric = (*MinSeparation)(nil)
	_ sim.Metric = (*Stability)(nil)
)

// Standard returns fresh instances of the metrics stored with every run.
func Standard() []sim.Metric {
	return []sim.Metric{
		NewEnergyDrift(),
		NewAngularMomentumDrift(),
		NewMinSeparation(),
		NewEnergy(),
	}
}
