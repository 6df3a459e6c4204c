package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
)

type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int { return 2 }

func integrate(integ dynamo.Integrator, dt float64, steps int) dynamo.State {
	x := dynamo.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(&oscillator{}, x, dt)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	dt := 0.01
	steps := 100
	x := integrate(NewRK4(), dt, steps)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestRK4FourthOrder(t *testing.T) {
	errAt := func(dt float64, steps int) float64 {
		x := integrate(NewRK4(), dt, steps)
		return math.Abs(x[0] - math.Cos(1.0))
	}

	coarse := errAt(0.1, 10)
	fine := errAt(0.05, 20)
	ratio := coarse / fine
	// Global error O(h^4): halving h divides the error by ~16.
	if ratio < 12 || ratio > 20 {
		t.Errorf("expected error ratio near 16, got %.2f (coarse %.3e, fine %.3e)", ratio, coarse, fine)
	}
}

func TestRK4SingleStepMatchesFormula(t *testing.T) {
	sys := &oscillator{}
	x := dynamo.State{0.3, -0.7}
	h := 0.25

	k1 := sys.Derive(x).Scale(h)
	k2 := sys.Derive(x.AddScaled(0.5, k1)).Scale(h)
	k3 := sys.Derive(x.AddScaled(0.5, k2)).Scale(h)
	k4 := sys.Derive(x.Add(k3)).Scale(h)
	want := make(dynamo.State, 2)
	for i := range want {
		want[i] = x[i] + (k1[i]+2*k2[i]+2*k3[i]+k4[i])/6
	}

	got := NewRK4().Step(sys, x, h)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRK4DoesNotModifyInput(t *testing.T) {
	x := dynamo.State{1.0, 2.0}
	NewRK4().Step(&oscillator{}, x, 0.1)
	if x[0] != 1.0 || x[1] != 2.0 {
		t.Errorf("input state modified: %v", x)
	}
}

func TestSymplecticBoundedEnergy(t *testing.T) {
	energy := func(x dynamo.State) float64 { return 0.5 * (x[0]*x[0] + x[1]*x[1]) }

	for _, name := range []string{"verlet", "leapfrog"} {
		t.Run(name, func(t *testing.T) {
			integ, err := New(name)
			if err != nil {
				t.Fatal(err)
			}
			x := integrate(integ, 0.05, 2000)
			if drift := math.Abs(energy(x) - 0.5); drift > 1e-2 {
				t.Errorf("energy drift %.3e too large", drift)
			}
		})
	}
}

func TestEulerGainsEnergy(t *testing.T) {
	x := integrate(NewEuler(), 0.01, 1000)
	if e := 0.5 * (x[0]*x[0] + x[1]*x[1]); e <= 0.5 {
		t.Errorf("explicit euler should gain energy on an oscillator, got %.6f", e)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}

	integ, err := New("")
	if err != nil {
		t.Fatalf("default integrator: %v", err)
	}
	if _, ok := integ.(*RK4); !ok {
		t.Errorf("default integrator is %T, want *RK4", integ)
	}

	if _, err := New("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
