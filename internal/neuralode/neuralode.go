package neuralode

import (
	"errors"
	"fmt"

	"github.com/san-kum/odegrad/internal/solvers"
	"github.com/san-kum/odegrad/internal/tensor"
)

var errNilDynamics = errors.New("neuralode: nil dynamics")

// NeuralODE binds a dynamics, an ascending time grid, and a stepper.
// Forward and Backward reuse the same stepper; direction comes from the
// sign of the grid differences alone.
type NeuralODE struct {
	dyn     Dynamics
	grid    []float64
	stepper solvers.Stepper

	// set by Compile: cached reversed grid and per-direction scratch
	// steppers.
	revGrid     []float64
	backStepper solvers.Stepper
}

// New builds a NeuralODE. A nil stepper defaults to Euler. The grid must
// hold at least two strictly ascending points; it is copied, so later
// mutation by the caller cannot skew integration.
func New(dyn Dynamics, grid []float64, stepper solvers.Stepper) (*NeuralODE, error) {
	if dyn == nil {
		return nil, errNilDynamics
	}
	if err := solvers.ValidateGrid(grid); err != nil {
		return nil, err
	}
	if !solvers.IsAscending(grid) {
		return nil, fmt.Errorf("%w: grid must ascend, got %g to %g",
			solvers.ErrInvalidGrid, grid[0], grid[len(grid)-1])
	}
	if stepper == nil {
		stepper = solvers.NewEuler()
	}
	g := make([]float64, len(grid))
	copy(g, grid)
	return &NeuralODE{dyn: dyn, grid: g, stepper: stepper}, nil
}

// NewFromSolver resolves the stepper by registry name, so unknown names
// surface [solvers.ErrUnsupportedStepper] at construction instead of at
// the first solve.
func NewFromSolver(dyn Dynamics, grid []float64, solver string) (*NeuralODE, error) {
	st, err := solvers.New(solver)
	if err != nil {
		return nil, err
	}
	return New(dyn, grid, st)
}

// Grid returns a copy of the time grid.
func (o *NeuralODE) Grid() []float64 {
	g := make([]float64, len(o.grid))
	copy(g, o.grid)
	return g
}

// Dynamics returns the bound dynamics, for callers that update its
// parameters between solves.
func (o *NeuralODE) Dynamics() Dynamics {
	return o.dyn
}

// Forward integrates x0 across the grid and returns the state at the
// final grid point. Memory use is independent of the grid length.
func (o *NeuralODE) Forward(x0 tensor.Tensor) (tensor.Tensor, error) {
	return solvers.Integrate(o.evaluate, o.stepper, o.grid, x0)
}

// ForwardStates integrates like Forward but keeps the state at every
// grid point, x0's copy first. Meant for inspection and plotting; the
// adjoint path never needs it.
func (o *NeuralODE) ForwardStates(x0 tensor.Tensor) ([]tensor.Tensor, error) {
	return solvers.IntegrateStates(o.evaluate, o.stepper, o.grid, x0)
}

// Backward runs the adjoint pass from the final state. It integrates the
// augmented bundle (state, adjoint, parameter accumulators) over the
// reversed grid with the facade's own stepper and returns the
// reconstructed initial state, dL/dx0, and one dL/dW per parameter (an
// empty slice for parameterless dynamics).
//
// final must come from a Forward over the same grid and dynamics; that
// precondition is not checkable here and is not checked. outputGrad is
// the loss gradient at the final state; pass an empty Tensor to
// integrate with a zero endpoint cotangent, which reduces Backward to
// reconstruction.
func (o *NeuralODE) Backward(final, outputGrad tensor.Tensor) (x0, dLdx0 tensor.Tensor, dLdW []tensor.Tensor, err error) {
	g := outputGrad
	if g.IsEmpty() {
		g = tensor.ZerosLike(final)
	}
	if !g.SameShape(final) {
		return tensor.Tensor{}, tensor.Tensor{}, nil, fmt.Errorf(
			"%w: output gradient shape %s vs final state shape %s",
			solvers.ErrShapeMismatch, g.ShapeString(), final.ShapeString())
	}

	params := o.dyn.Parameters()
	if err := o.probeVJP(final, g, params); err != nil {
		return tensor.Tensor{}, tensor.Tensor{}, nil, err
	}

	aug := newAugmented(o.dyn, final)
	rev := o.revGrid
	if rev == nil {
		rev = solvers.Reverse(o.grid)
	}
	st := o.backStepper
	if st == nil {
		st = o.stepper
	}

	z, err := solvers.Integrate(aug.derivative, st, rev, aug.pack(final, g))
	if err != nil {
		return tensor.Tensor{}, tensor.Tensor{}, nil, err
	}
	x0, dLdx0, dLdW = aug.unpack(z, params)
	return x0, dLdx0, dLdW, nil
}

// probeVJP runs one VJP at the endpoint and checks every returned shape,
// so the augmented integration can trust the dynamics afterwards.
func (o *NeuralODE) probeVJP(x, cot tensor.Tensor, params []tensor.Tensor) error {
	tN := o.grid[len(o.grid)-1]
	out, dx, dparams := o.dyn.VJP(tN, x, cot)
	if !out.SameShape(x) {
		return fmt.Errorf("%w: VJP primal shape %s for state shape %s",
			solvers.ErrShapeMismatch, out.ShapeString(), x.ShapeString())
	}
	if !dx.SameShape(x) {
		return fmt.Errorf("%w: VJP state pullback shape %s for state shape %s",
			solvers.ErrShapeMismatch, dx.ShapeString(), x.ShapeString())
	}
	if len(dparams) != len(params) {
		return fmt.Errorf("%w: VJP returned %d parameter pullbacks for %d parameters",
			solvers.ErrShapeMismatch, len(dparams), len(params))
	}
	for i, dp := range dparams {
		if !dp.SameShape(params[i]) {
			return fmt.Errorf("%w: VJP parameter pullback %d shape %s vs parameter shape %s",
				solvers.ErrShapeMismatch, i, dp.ShapeString(), params[i].ShapeString())
		}
	}
	return nil
}

func (o *NeuralODE) evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	return o.dyn.Evaluate(t, x)
}
