// Package record defines the diagnostic time series produced by a run and
// its whitespace-separated text encoding.
package record

import (
	"fmt"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Columns is the on-disk field order. Plotting and playback index columns
// by position, so the order must not change.
var Columns = []string{
	"t",
	"x1", "y1", "z1", "x2", "y2", "z2", "x3", "y3", "z3",
	"vx1", "vy1", "vz1", "vx2", "vy2", "vz2", "vx3", "vy3", "vz3",
	"E_kin", "E_pot", "E_tot",
	"Lx", "Ly", "Lz",
}

// NumFields is the number of scalars in one encoded record.
const NumFields = 25

const (
	stateOffset  = 1
	stateLen     = 18
	energyOffset = stateOffset + stateLen
	momentOffset = energyOffset + 3
)

// ColumnIndex returns the position of name in Columns, or -1.
func ColumnIndex(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record is the diagnostic row for one visited time point.
type Record struct {
	Time            float64
	State           dynamo.State
	Kinetic         float64
	Potential       float64
	Total           float64
	AngularMomentum r3.Vec
}

// Fields flattens r in Columns order.
func (r Record) Fields() []float64 {
	f := make([]float64, 0, NumFields)
	f = append(f, r.Time)
	f = append(f, r.State...)
	f = append(f, r.Kinetic, r.Potential, r.Total)
	f = append(f, r.AngularMomentum.X, r.AngularMomentum.Y, r.AngularMomentum.Z)
	return f
}

// FromFields is the inverse of Fields.
func FromFields(f []float64) (Record, error) {
	if len(f) != NumFields {
		return Record{}, fmt.Errorf("%w: got %d fields, want %d", ErrMalformed, len(f), NumFields)
	}
	state := make(dynamo.State, stateLen)
	copy(state, f[stateOffset:energyOffset])
	return Record{
		Time:      f[0],
		State:     state,
		Kinetic:   f[energyOffset],
		Potential: f[energyOffset+1],
		Total:     f[energyOffset+2],
		AngularMomentum: r3.Vec{
			X: f[momentOffset],
			Y: f[momentOffset+1],
			Z: f[momentOffset+2],
		},
	}, nil
}

// Finite reports whether every field of r is finite.
func (r Record) Finite() bool {
	for _, v := range r.Fields() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sink receives records in time order.
type Sink interface {
	Write(r Record) error
}

// Collector keeps records in memory.
type Collector struct {
	Records []Record
}

func (c *Collector) Write(r Record) error {
	c.Records = append(c.Records, r)
	return nil
}

type multiSink []Sink

// MultiSink duplicates each record to all sinks, stopping at the first error.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Write(r Record) error {
	for _, s := range m {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}
