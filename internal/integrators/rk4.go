package integrators

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/threebody/internal/dynamo"
)

// RK4 is the classical fourth-order Runge-Kutta scheme:
//
//	k1 = h f(y)
//	k2 = h f(y + k1/2)
//	k3 = h f(y + k2/2)
//	k4 = h f(y + k3)
//	y' = y + (k1 + 2 k2 + 2 k3 + k4) / 6
//
// Scratch buffers are reused between steps, so an RK4 value must not be
// shared by concurrent runs.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, h float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	floats.ScaleTo(r.k1, h, sys.Derive(x))

	floats.AddScaledTo(r.scratch, x, 0.5, r.k1)
	floats.ScaleTo(r.k2, h, sys.Derive(r.scratch))

	floats.AddScaledTo(r.scratch, x, 0.5, r.k2)
	floats.ScaleTo(r.k3, h, sys.Derive(r.scratch))

	floats.AddTo(r.scratch, x, r.k3)
	floats.ScaleTo(r.k4, h, sys.Derive(r.scratch))

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + (r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])/6
	}
	return result
}
