package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// MinSeparation is the closest approach of any pair of bodies.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(r record.Record) {
	for _, d := range physics.Separations(r.State) {
		if d < m.min {
			m.min = d
		}
	}
}

func (m *MinSeparation) Value() float64 {
	if math.IsInf(m.min, 1) {
		return 0
	}
	return m.min
}

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }

// Stability is the fraction of records that are finite and whose bodies all
// stay within radius of the origin. A value below 1 flags a blow-up or an
// ejection.
type Stability struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewStability(radius float64) *Stability {
	return &Stability{
		name:   "stability",
		radius: radius,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(r record.Record) {
	s.samples++
	if !r.Finite() {
		s.violations++
		return
	}
	for _, p := range physics.Positions(r.State) {
		if r3.Norm(p) > s.radius {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
