package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/threebody/internal/record"
)

// AngularMomentumDrift is max |L(t) - L(0)| over the observed records.
type AngularMomentumDrift struct {
	name     string
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(r record.Record) {
	if a.samples == 0 {
		a.initial = r.AngularMomentum
	}
	a.samples++
	a.maxDrift = math.Max(a.maxDrift, r3.Norm(r3.Sub(r.AngularMomentum, a.initial)))
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = r3.Vec{}
	a.maxDrift = 0
	a.samples = 0
}
