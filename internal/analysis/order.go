package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/odegrad/internal/neuralode"
	"github.com/san-kum/odegrad/internal/solvers"
	"github.com/san-kum/odegrad/internal/tensor"
)

// OrderPoint is one grid density in a convergence study.
type OrderPoint struct {
	GridPoints int
	H          float64
	Err        float64
}

// OrderStudy collects endpoint errors for one stepper across grid
// densities, densest last.
type OrderStudy struct {
	Solver string
	Points []OrderPoint
}

// ReferenceEndpoint integrates with rk4 on a dense grid, for measuring
// steppers against when no closed form is at hand.
func ReferenceEndpoint(dyn neuralode.Dynamics, t0, t1 float64, x0 tensor.Tensor, gridPoints int) (tensor.Tensor, error) {
	ode, err := neuralode.New(dyn, solvers.Linspace(t0, t1, gridPoints), solvers.NewRK4())
	if err != nil {
		return tensor.Tensor{}, err
	}
	return ode.Forward(x0)
}

// ConvergenceStudy integrates dyn from x0 over [t0, t1] once per grid
// size and records the largest endpoint deviation from reference.
func ConvergenceStudy(dyn neuralode.Dynamics, solver string, t0, t1 float64, x0 tensor.Tensor, sizes []int, reference tensor.Tensor) (OrderStudy, error) {
	study := OrderStudy{Solver: solver, Points: make([]OrderPoint, 0, len(sizes))}
	for _, n := range sizes {
		if n < 2 {
			return OrderStudy{}, fmt.Errorf("%w: study grid needs at least 2 points, got %d",
				solvers.ErrInvalidGrid, n)
		}
		ode, err := neuralode.NewFromSolver(dyn, solvers.Linspace(t0, t1, n), solver)
		if err != nil {
			return OrderStudy{}, err
		}
		got, err := ode.Forward(x0)
		if err != nil {
			return OrderStudy{}, fmt.Errorf("%d grid points: %w", n, err)
		}
		study.Points = append(study.Points, OrderPoint{
			GridPoints: n,
			H:          (t1 - t0) / float64(n-1),
			Err:        got.MaxDiff(reference),
		})
	}
	return study, nil
}

// CompareSteppers runs one ConvergenceStudy per stepper name over the
// same problem.
func CompareSteppers(dyn neuralode.Dynamics, steppers []string, t0, t1 float64, x0 tensor.Tensor, sizes []int, reference tensor.Tensor) ([]OrderStudy, error) {
	studies := make([]OrderStudy, 0, len(steppers))
	for _, name := range steppers {
		s, err := ConvergenceStudy(dyn, name, t0, t1, x0, sizes, reference)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		studies = append(studies, s)
	}
	return studies, nil
}

// Ratios returns err[i]/err[i+1] between successive densities. With
// doubled grids an order-p stepper lands near 2^p.
func (s OrderStudy) Ratios() []float64 {
	if len(s.Points) < 2 {
		return nil
	}
	r := make([]float64, 0, len(s.Points)-1)
	for i := 0; i+1 < len(s.Points); i++ {
		r = append(r, s.Points[i].Err/s.Points[i+1].Err)
	}
	return r
}

// EstimatedOrder fits log(err) = c + p*log(h) by least squares and
// returns the slope p. Points at the exact-zero floor are skipped;
// fewer than two usable points give NaN.
func (s OrderStudy) EstimatedOrder() float64 {
	var lh, le []float64
	for _, p := range s.Points {
		if p.Err <= 0 || p.H <= 0 {
			continue
		}
		lh = append(lh, math.Log(p.H))
		le = append(le, math.Log(p.Err))
	}
	if len(lh) < 2 {
		return math.NaN()
	}
	_, slope := stat.LinearRegression(lh, le, nil, false)
	return slope
}
