package solvers

import (
	"fmt"

	"github.com/san-kum/odegrad/internal/tensor"
)

// Integrate walks the grid point to point with the given stepper and
// returns the state at the final grid point. The grid sets both the step
// sizes and the direction; it is validated but never mutated. The
// derivative shape is probed at the first grid point so a mismatched
// dynamics fails before any stepping.
func Integrate(f DerivativeFunc, st Stepper, grid []float64, x0 tensor.Tensor) (tensor.Tensor, error) {
	if err := ValidateGrid(grid); err != nil {
		return tensor.Tensor{}, err
	}
	if dx := f(grid[0], x0); !dx.SameShape(x0) {
		return tensor.Tensor{}, fmt.Errorf("%w: derivative shape %s for state shape %s",
			ErrShapeMismatch, dx.ShapeString(), x0.ShapeString())
	}
	x := x0.Clone()
	for i := 0; i+1 < len(grid); i++ {
		x = st.Step(f, grid[i], grid[i+1]-grid[i], x)
	}
	return x, nil
}

// IntegrateStates is Integrate keeping the whole trajectory: one state per
// grid point, starting with a copy of x0. Memory grows with the grid; the
// adjoint path never uses it.
func IntegrateStates(f DerivativeFunc, st Stepper, grid []float64, x0 tensor.Tensor) ([]tensor.Tensor, error) {
	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}
	if dx := f(grid[0], x0); !dx.SameShape(x0) {
		return nil, fmt.Errorf("%w: derivative shape %s for state shape %s",
			ErrShapeMismatch, dx.ShapeString(), x0.ShapeString())
	}
	states := make([]tensor.Tensor, 0, len(grid))
	x := x0.Clone()
	states = append(states, x)
	for i := 0; i+1 < len(grid); i++ {
		x = st.Step(f, grid[i], grid[i+1]-grid[i], x)
		states = append(states, x)
	}
	return states, nil
}
