// Package neuralode couples fixed-step ODE integration with adjoint
// sensitivity analysis.
//
// A [NeuralODE] binds a [Dynamics] (the vector field dx/dt = f(t, x, W)
// with its vector-Jacobian product) to a time grid and a solver stepper:
//
//   - [NeuralODE.Forward]: integrate x0 across the grid, final state only
//   - [NeuralODE.Backward]: integrate the augmented system over the
//     reversed grid, recovering x0 and the loss gradients dL/dx0, dL/dW
//     in O(1) memory with respect to the grid length
//
// # Example
//
//	dyn := models.NewSineDecay()
//	ode, _ := neuralode.New(dyn, solvers.Linspace(0, 1, 100), solvers.NewRK4())
//	final, _ := ode.Forward(x0)
//	_, dLdx0, dLdW, _ := ode.Backward(final, lossGrad)
//
// # Thread Safety
//
// A NeuralODE built with plain steppers is safe for concurrent use when
// its Dynamics is. [Compile] trades that away: a compiled instance keeps
// scratch buffers and must stay on one goroutine.
package neuralode
