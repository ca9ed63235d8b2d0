package neuralode

import "github.com/san-kum/odegrad/internal/tensor"

// Dynamics is the vector field of an ODE together with its reverse-mode
// sensitivity. Implementations must be stateless across calls: Evaluate
// and VJP at the same (t, x) always agree.
type Dynamics interface {
	// Evaluate returns dx/dt at time t and state x, shaped like x.
	Evaluate(t float64, x tensor.Tensor) tensor.Tensor

	// Parameters returns the learnable tensors in a fixed order. The
	// returned tensors are the live parameters, not copies; optimizers
	// update them in place. Parameterless dynamics return an empty list.
	Parameters() []tensor.Tensor

	// VJP evaluates the dynamics and pulls cot back through it:
	//
	//	out        = f(t, x)
	//	dx         = cot^T df/dx
	//	dparams[i] = cot^T df/dW_i
	//
	// dparams aligns with Parameters(). Returning the primal alongside
	// the pullbacks lets one traced evaluation serve both.
	VJP(t float64, x, cot tensor.Tensor) (out, dx tensor.Tensor, dparams []tensor.Tensor)
}
