package integrators

import "github.com/san-kum/threebody/internal/dynamo"

// Euler is the explicit first-order scheme. It is only useful as a baseline
// when comparing energy drift.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	return x.AddScaled(dt, sys.Derive(x))
}
