package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
)

func scenario(t *testing.T) *ThreeBody {
	t.Helper()
	sys, err := New(
		[]float64{1, 1, 1},
		[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[][]float64{{0, 0, 0}, {0, 1, 0}, {-1, 0, 0}},
		1.0,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sys
}

func TestNewLayout(t *testing.T) {
	sys := scenario(t)
	want := dynamo.State{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		0, 0, 0, 0, 1, 0, -1, 0, 0,
	}
	got := sys.State()
	if len(got) != StateDim {
		t.Fatalf("state length %d, want %d", len(got), StateDim)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewArity(t *testing.T) {
	pos := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	vel := [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}

	tests := []struct {
		name       string
		masses     []float64
		positions  [][]float64
		velocities [][]float64
	}{
		{"two masses", []float64{1, 1}, pos, vel},
		{"four masses", []float64{1, 1, 1, 1}, pos, vel},
		{"two positions", []float64{1, 1, 1}, pos[:2], vel},
		{"missing velocities", []float64{1, 1, 1}, pos, nil},
		{"2d position", []float64{1, 1, 1}, [][]float64{{0, 0}, {1, 0, 0}, {0, 1, 0}}, vel},
		{"4d velocity", []float64{1, 1, 1}, pos, [][]float64{{0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.masses, tt.positions, tt.velocities, 1.0)
			if !errors.Is(err, ErrArity) {
				t.Errorf("expected ErrArity, got %v", err)
			}
			if !errors.Is(err, dynamo.ErrDimensionMismatch) {
				t.Errorf("expected error to wrap ErrDimensionMismatch, got %v", err)
			}
		})
	}
}

func TestNewAcceptsNonPhysicalValues(t *testing.T) {
	_, err := New(
		[]float64{0, -1, 1},
		[][]float64{{0, 0, 0}, {0, 0, 0}, {0, 1, 0}},
		[][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		-1.0,
	)
	if err != nil {
		t.Errorf("only arity is checked, got %v", err)
	}
}

func TestSetState(t *testing.T) {
	sys := scenario(t)

	if err := sys.SetState(make(dynamo.State, 12)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	x := make(dynamo.State, StateDim)
	x[0] = 42
	if err := sys.SetState(x); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	x[0] = 7
	if got := sys.State()[0]; got != 42 {
		t.Errorf("installed state aliases caller slice: got %v", got)
	}

	s := sys.State()
	s[0] = -1
	if got := sys.State()[0]; got != 42 {
		t.Errorf("State() returned an alias: got %v", got)
	}
}

func TestTwoBodyAcceleration(t *testing.T) {
	// Third body massless and far away so only the pair interacts.
	sys, err := New(
		[]float64{2, 2, 0},
		[][]float64{{0, 0, 0}, {1, 0, 0}, {100, 100, 100}},
		[][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		1.0,
	)
	if err != nil {
		t.Fatal(err)
	}
	p := Positions(sys.State())

	a1 := sys.Acceleration(0, p)
	if math.Abs(a1.X-2.0) > 1e-12 || a1.Y != 0 || a1.Z != 0 {
		t.Errorf("body 1 acceleration = %+v, want (2, 0, 0)", a1)
	}

	a2 := sys.Acceleration(1, p)
	if math.Abs(a2.X+2.0) > 1e-12 || a2.Y != 0 || a2.Z != 0 {
		t.Errorf("body 2 acceleration = %+v, want (-2, 0, 0)", a2)
	}
}

func TestCoincidentBodiesAreNotGuarded(t *testing.T) {
	sys, err := New(
		[]float64{1, 1, 1},
		[][]float64{{1, 2, 3}, {1, 2, 3}, {0, 1, 0}},
		[][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		1.0,
	)
	if err != nil {
		t.Fatal(err)
	}

	dx := sys.Derive(sys.State())
	if dx[9:12].IsValid() {
		t.Errorf("expected non-finite acceleration for body 1, got %v", dx[9:12])
	}
	if !dx[15:18].IsValid() {
		t.Errorf("body 3 acceleration should stay finite, got %v", dx[15:18])
	}
	if !math.IsInf(sys.PotentialEnergy(sys.State()), -1) {
		t.Errorf("expected -Inf potential energy, got %v", sys.PotentialEnergy(sys.State()))
	}
}

func TestDerivePositionBlockIsVelocity(t *testing.T) {
	sys := scenario(t)
	x := sys.State()
	dx := sys.Derive(x)

	for i := 0; i < 9; i++ {
		if dx[i] != x[9+i] {
			t.Errorf("dx[%d] = %v, want velocity %v", i, dx[i], x[9+i])
		}
	}

	p := Positions(x)
	for i := 0; i < NumBodies; i++ {
		a := sys.Acceleration(i, p)
		got := dx[9+3*i : 12+3*i]
		if got[0] != a.X || got[1] != a.Y || got[2] != a.Z {
			t.Errorf("body %d: derivative %v, acceleration %+v", i+1, got, a)
		}
	}
}

func TestDeriveIsPure(t *testing.T) {
	sys := scenario(t)
	x := sys.State()
	before := x.Clone()

	a := sys.Derive(x)
	b := sys.Derive(x)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("derivative not deterministic at %d", i)
		}
		if x[i] != before[i] {
			t.Fatalf("derivative mutated its input at %d", i)
		}
	}
}

func TestEnergies(t *testing.T) {
	sys := scenario(t)
	x := sys.State()

	// Bodies 2 and 3 move at unit speed.
	if ke := sys.KineticEnergy(x); math.Abs(ke-1.0) > 1e-12 {
		t.Errorf("kinetic energy = %v, want 1", ke)
	}

	wantPE := -(1 + 1 + 1/math.Sqrt2)
	if pe := sys.PotentialEnergy(x); math.Abs(pe-wantPE) > 1e-12 {
		t.Errorf("potential energy = %v, want %v", pe, wantPE)
	}

	if e := sys.TotalEnergy(x); math.Abs(e-(1+wantPE)) > 1e-12 {
		t.Errorf("total energy = %v, want %v", e, 1+wantPE)
	}
	if sys.Energy(x) != sys.TotalEnergy(x) {
		t.Error("Energy must equal TotalEnergy")
	}
}

func TestAngularMomentum(t *testing.T) {
	sys := scenario(t)
	l := sys.AngularMomentum(sys.State())

	// (1,0,0)x(0,1,0) = (0,0,1); (0,1,0)x(-1,0,0) = (0,0,1).
	if l.X != 0 || l.Y != 0 || math.Abs(l.Z-2) > 1e-12 {
		t.Errorf("angular momentum = %+v, want (0, 0, 2)", l)
	}
}

func TestSeparations(t *testing.T) {
	sys := scenario(t)
	r := Separations(sys.State())
	want := [3]float64{1, 1, math.Sqrt2}
	for i := range want {
		if math.Abs(r[i]-want[i]) > 1e-12 {
			t.Errorf("separation %d = %v, want %v", i, r[i], want[i])
		}
	}
}
