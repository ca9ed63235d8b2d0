package solvers

import (
	"fmt"
	"sort"
	"strings"
)

var factories = map[string]func() Stepper{
	"euler":    func() Stepper { return NewEuler() },
	"rk2":      func() Stepper { return NewRK2() },
	"midpoint": func() Stepper { return NewRK2() },
	"rk4":      func() Stepper { return NewRK4() },
}

// New returns the named stepper. Names are case-insensitive; "midpoint"
// is an alias for "rk2". Unknown names wrap [ErrUnsupportedStepper].
func New(name string) (Stepper, error) {
	fn, ok := factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			ErrUnsupportedStepper, name, strings.Join(Names(), ", "))
	}
	return fn(), nil
}

// Names returns the registered stepper names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
