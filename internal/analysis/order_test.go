package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odegrad/internal/models"
	"github.com/san-kum/odegrad/internal/solvers"
	"github.com/san-kum/odegrad/internal/tensor"
)

func sineDecayReference() tensor.Tensor {
	return tensor.FromSlice([]float64{math.Log(2 - math.Cos(1))}, 1)
}

func TestConvergenceOrders(t *testing.T) {
	x0 := tensor.Zeros(1)
	sizes := []int{25, 50, 100}

	tests := []struct {
		solver string
		lo, hi float64
	}{
		{"euler", 0.8, 1.2},
		{"rk2", 1.7, 2.3},
		{"rk4", 3.5, 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.solver, func(t *testing.T) {
			study, err := ConvergenceStudy(models.NewSineDecay(), tt.solver, 0, 1, x0, sizes, sineDecayReference())
			if err != nil {
				t.Fatal(err)
			}
			if len(study.Points) != len(sizes) {
				t.Fatalf("got %d points, want %d", len(study.Points), len(sizes))
			}
			for i := 1; i < len(study.Points); i++ {
				if study.Points[i].Err >= study.Points[i-1].Err {
					t.Errorf("error did not shrink from %d to %d grid points",
						study.Points[i-1].GridPoints, study.Points[i].GridPoints)
				}
			}
			if p := study.EstimatedOrder(); p < tt.lo || p > tt.hi {
				t.Errorf("EstimatedOrder() = %.3f, want within [%g, %g]", p, tt.lo, tt.hi)
			}
		})
	}
}

func TestRatiosNearDoublingPower(t *testing.T) {
	x0 := tensor.Zeros(1)
	study, err := ConvergenceStudy(models.NewSineDecay(), "rk4", 0, 1, x0, []int{25, 50, 100}, sineDecayReference())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range study.Ratios() {
		if r < 12 || r > 22 {
			t.Errorf("rk4 doubling ratio %.2f, want near 16", r)
		}
	}
}

func TestCompareSteppers(t *testing.T) {
	x0 := tensor.Zeros(1)
	names := []string{"euler", "rk2", "rk4"}
	studies, err := CompareSteppers(models.NewSineDecay(), names, 0, 1, x0, []int{50, 100}, sineDecayReference())
	if err != nil {
		t.Fatal(err)
	}
	if len(studies) != len(names) {
		t.Fatalf("got %d studies, want %d", len(studies), len(names))
	}
	for i, s := range studies {
		if s.Solver != names[i] {
			t.Errorf("study %d solver %q, want %q", i, s.Solver, names[i])
		}
	}
	// Higher order, smaller error at the same density.
	for i := 1; i < len(studies); i++ {
		if studies[i].Points[0].Err >= studies[i-1].Points[0].Err {
			t.Errorf("%s not more accurate than %s at 50 points", names[i], names[i-1])
		}
	}
}

func TestReferenceEndpoint(t *testing.T) {
	got, err := ReferenceEndpoint(models.NewSineDecay(), 0, 1, tensor.Zeros(1), 800)
	if err != nil {
		t.Fatal(err)
	}
	if d := got.MaxDiff(sineDecayReference()); d > 1e-10 {
		t.Errorf("reference endpoint off by %.2e", d)
	}
}

func TestConvergenceStudyUnknownSolver(t *testing.T) {
	_, err := ConvergenceStudy(models.NewSineDecay(), "rk45", 0, 1, tensor.Zeros(1), []int{50}, sineDecayReference())
	if !errors.Is(err, solvers.ErrUnsupportedStepper) {
		t.Fatalf("err = %v, want ErrUnsupportedStepper", err)
	}
}

func TestConvergenceStudyBadSize(t *testing.T) {
	_, err := ConvergenceStudy(models.NewSineDecay(), "rk4", 0, 1, tensor.Zeros(1), []int{1}, sineDecayReference())
	if !errors.Is(err, solvers.ErrInvalidGrid) {
		t.Fatalf("err = %v, want ErrInvalidGrid", err)
	}
}

func TestEstimatedOrderDegenerate(t *testing.T) {
	s := OrderStudy{Points: []OrderPoint{{GridPoints: 50, H: 0.02, Err: 1e-5}}}
	if p := s.EstimatedOrder(); !math.IsNaN(p) {
		t.Errorf("EstimatedOrder() with one point = %v, want NaN", p)
	}
}
