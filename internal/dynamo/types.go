package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is a flat state vector. Arithmetic helpers allocate a new State and
// require operands of equal length.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	floats.AddTo(result, s, other)
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	floats.SubTo(result, s, other)
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	floats.ScaleTo(result, factor, s)
	return result
}

// AddScaled returns s + alpha*other.
func (s State) AddScaled(alpha float64, other State) State {
	result := make(State, len(s))
	floats.AddScaledTo(result, s, alpha, other)
	return result
}

// System is an autonomous ODE dX/dt = f(X).
type System interface {
	Derive(x State) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances x by one fixed step dt. Implementations must not
// modify x.
type Integrator interface {
	Step(sys System, x State, dt float64) State
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.001,
		Duration:      10.0,
		ValidateState: false,
	}
}

// MaxSteps bounds the step count of a single run so that Steps never
// overflows.
const MaxSteps = math.MaxInt32

// Steps is the number of fixed steps a run of cfg performs: floor(Duration/Dt).
// Configs over MaxSteps are rejected by the simulator before Steps is used.
func (c Config) Steps() int {
	return int(math.Floor(c.Duration / c.Dt))
}
