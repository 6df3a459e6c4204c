package integrators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/threebody/internal/dynamo"
)

// ErrUnknown is returned by New for an unregistered name.
var ErrUnknown = errors.New("unknown integrator")

// Default is the integrator used when a configuration names none.
const Default = "rk4"

var constructors = map[string]func() dynamo.Integrator{
	"rk4":      func() dynamo.Integrator { return NewRK4() },
	"euler":    func() dynamo.Integrator { return NewEuler() },
	"verlet":   func() dynamo.Integrator { return NewVerlet() },
	"leapfrog": func() dynamo.Integrator { return NewLeapfrog() },
}

// New returns a fresh integrator by name. Each call allocates its own
// scratch buffers.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknown, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
