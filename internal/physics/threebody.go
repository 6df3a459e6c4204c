package physics

import (
	"fmt"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// NumBodies is fixed for the lifetime of a system.
	NumBodies = 3

	// StateDim is the length of a three-body state vector: 3 positions
	// followed by 3 velocities.
	StateDim = 2 * NumBodies * 3

	// DefaultG is the SI gravitational constant in N m^2 / kg^2.
	DefaultG = 6.67430e-11

	velocityOffset = NumBodies * 3
)

// ErrArity is returned by New when the inputs do not describe exactly three
// bodies with 3-vector positions and velocities.
var ErrArity = fmt.Errorf("physics: three-body arity violated: %w", dynamo.ErrDimensionMismatch)

// ThreeBody implements the gravitational three-body problem in 3-D.
// State: [x1, y1, z1, x2, y2, z2, x3, y3, z3, vx1, vy1, vz1, vx2, vy2, vz2, vx3, vy3, vz3]
//
// The installed state is replaced wholesale by SetState; all derivative and
// diagnostic methods take the state to evaluate explicitly and never mutate
// the receiver.
type ThreeBody struct {
	masses [NumBodies]float64
	g      float64
	state  dynamo.State
}

// New builds a system from three masses, three initial positions and three
// initial velocities. Only the shape of the inputs is checked: zero or
// negative masses and coincident bodies are accepted and will surface as
// non-finite values during integration.
func New(masses []float64, positions, velocities [][]float64, g float64) (*ThreeBody, error) {
	if len(masses) != NumBodies {
		return nil, fmt.Errorf("%w: got %d masses", ErrArity, len(masses))
	}
	if len(positions) != NumBodies {
		return nil, fmt.Errorf("%w: got %d positions", ErrArity, len(positions))
	}
	if len(velocities) != NumBodies {
		return nil, fmt.Errorf("%w: got %d velocities", ErrArity, len(velocities))
	}

	tb := &ThreeBody{g: g, state: make(dynamo.State, StateDim)}
	for i := 0; i < NumBodies; i++ {
		if len(positions[i]) != 3 {
			return nil, fmt.Errorf("%w: position %d has %d components", ErrArity, i+1, len(positions[i]))
		}
		if len(velocities[i]) != 3 {
			return nil, fmt.Errorf("%w: velocity %d has %d components", ErrArity, i+1, len(velocities[i]))
		}
		tb.masses[i] = masses[i]
		copy(tb.state[3*i:3*i+3], positions[i])
		copy(tb.state[velocityOffset+3*i:velocityOffset+3*i+3], velocities[i])
	}
	return tb, nil
}

func (t *ThreeBody) StateDim() int { return StateDim }

// Masses returns the mass vector.
func (t *ThreeBody) Masses() [NumBodies]float64 { return t.masses }

// G returns the gravitational constant.
func (t *ThreeBody) G() float64 { return t.g }

// State returns a copy of the installed state.
func (t *ThreeBody) State() dynamo.State { return t.state.Clone() }

// SetState installs a copy of x as the current state.
func (t *ThreeBody) SetState(x dynamo.State) error {
	if len(x) != StateDim {
		return fmt.Errorf("%w: state has %d components, want %d", dynamo.ErrDimensionMismatch, len(x), StateDim)
	}
	t.state = x.Clone()
	return nil
}

// Positions splits the position block of x into one vector per body.
func Positions(x dynamo.State) [NumBodies]r3.Vec {
	var p [NumBodies]r3.Vec
	for i := range p {
		p[i] = r3.Vec{X: x[3*i], Y: x[3*i+1], Z: x[3*i+2]}
	}
	return p
}

// Velocities splits the velocity block of x into one vector per body.
func Velocities(x dynamo.State) [NumBodies]r3.Vec {
	var v [NumBodies]r3.Vec
	for i := range v {
		o := velocityOffset + 3*i
		v[i] = r3.Vec{X: x[o], Y: x[o+1], Z: x[o+2]}
	}
	return v
}

// Acceleration is the Newtonian acceleration of body i due to the other two.
// Coincident bodies produce Inf or NaN components.
func (t *ThreeBody) Acceleration(i int, positions [NumBodies]r3.Vec) r3.Vec {
	var acc r3.Vec
	ri := positions[i]
	for j := 0; j < NumBodies; j++ {
		if j == i {
			continue
		}
		rij := r3.Sub(positions[j], ri)
		r := r3.Norm(rij)
		acc = r3.Add(acc, r3.Scale(t.g*t.masses[j]/(r*r*r), rij))
	}
	return acc
}

// Derive returns dx/dt: the velocity block of x followed by the accelerations.
func (t *ThreeBody) Derive(x dynamo.State) dynamo.State {
	dx := make(dynamo.State, StateDim)
	copy(dx[:velocityOffset], x[velocityOffset:])

	positions := Positions(x)
	for i := 0; i < NumBodies; i++ {
		a := t.Acceleration(i, positions)
		o := velocityOffset + 3*i
		dx[o], dx[o+1], dx[o+2] = a.X, a.Y, a.Z
	}
	return dx
}

func (t *ThreeBody) KineticEnergy(x dynamo.State) float64 {
	ke := 0.0
	for i, v := range Velocities(x) {
		ke += t.masses[i] * r3.Norm2(v)
	}
	return 0.5 * ke
}

// PotentialEnergy sums -G m_i m_j / r_ij once per unordered pair.
func (t *ThreeBody) PotentialEnergy(x dynamo.State) float64 {
	p := Positions(x)
	pe := 0.0
	for i := 0; i < NumBodies; i++ {
		for j := i + 1; j < NumBodies; j++ {
			r := r3.Norm(r3.Sub(p[j], p[i]))
			pe -= t.g * t.masses[i] * t.masses[j] / r
		}
	}
	return pe
}

func (t *ThreeBody) TotalEnergy(x dynamo.State) float64 {
	return t.KineticEnergy(x) + t.PotentialEnergy(x)
}

// Energy implements dynamo.Hamiltonian.
func (t *ThreeBody) Energy(x dynamo.State) float64 {
	return t.TotalEnergy(x)
}

// AngularMomentum is the total L = sum m_i (r_i x v_i) about the origin.
func (t *ThreeBody) AngularMomentum(x dynamo.State) r3.Vec {
	p := Positions(x)
	v := Velocities(x)
	var l r3.Vec
	for i := 0; i < NumBodies; i++ {
		l = r3.Add(l, r3.Scale(t.masses[i], r3.Cross(p[i], v[i])))
	}
	return l
}

// Separations returns the pairwise distances r12, r13 and r23.
func Separations(x dynamo.State) [3]float64 {
	p := Positions(x)
	return [3]float64{
		r3.Norm(r3.Sub(p[0], p[1])),
		r3.Norm(r3.Sub(p[0], p[2])),
		r3.Norm(r3.Sub(p[1], p[2])),
	}
}

// GetParams reports the physical parameters of the system.
func (t *ThreeBody) GetParams() map[string]float64 {
	return map[string]float64{
		"m1": t.masses[0],
		"m2": t.masses[1],
		"m3": t.masses[2],
		"g":  t.g,
	}
}
