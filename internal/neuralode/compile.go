package neuralode

import (
	"github.com/san-kum/odegrad/internal/solvers"
)

// Compile returns a NeuralODE with the integration plan prepared ahead
// of time: the reversed grid is cached and steppers that implement
// [solvers.Compilable] are swapped for scratch-buffer variants, one per
// direction so forward state and augmented bundle keep separate buffers.
// Outputs are bit-identical to the uncompiled facade; only allocation
// behavior changes. A state shape change between calls re-plans
// transparently inside the scratch steppers.
//
// The returned instance shares the original's dynamics but none of its
// mutable plan, so the original stays valid. Compiled instances are not
// safe for concurrent use.
func Compile(o *NeuralODE) *NeuralODE {
	c := &NeuralODE{
		dyn:     o.dyn,
		grid:    o.grid,
		stepper: o.stepper,
		revGrid: solvers.Reverse(o.grid),
	}
	if comp, ok := o.stepper.(solvers.Compilable); ok {
		c.stepper = comp.Compiled()
		c.backStepper = comp.Compiled()
	}
	return c
}
