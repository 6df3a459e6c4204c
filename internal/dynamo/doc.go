// Package dynamo provides core simulation primitives for the three-body
// integrator.
//
// The package defines the fundamental interfaces and types shared by the
// physics, integrator and simulation packages:
//
//   - [State]: flat vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Config]: run parameters (dt, duration, validation)
//
// # Example
//
//	sys, _ := physics.New(masses, positions, velocities, 1.0)
//	integ := integrators.NewRK4()
//	next := integ.Step(sys, sys.State(), dt)
//
// # Thread Safety
//
// None of the types here are safe for concurrent mutation. Independent runs
// may execute in parallel as long as they share no System value.
package dynamo
