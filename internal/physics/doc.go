// Package physics provides the gravitational three-body model.
//
// [ThreeBody] implements [dynamo.System] and [dynamo.Hamiltonian]. It keeps
// the masses, the gravitational constant and the installed 18-component
// state vector; the derivative and the conserved-quantity diagnostics are
// pure functions of a state passed in explicitly, so integrators can
// evaluate them at intermediate states.
//
// # Energy Conservation
//
// Energy and angular momentum are conserved by the exact dynamics. Drift in
// either is a measure of integration error:
//
//	sys, _ := physics.New(masses, positions, velocities, 1.0)
//	e0 := sys.TotalEnergy(sys.State())
//	l0 := sys.AngularMomentum(sys.State())
package physics
