package solvers

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odegrad/internal/tensor"
)

func TestIntegrate_ClosedForm(t *testing.T) {
	// dx/dt = -x, x(0)=1: x(t) = exp(-t).
	f := func(_ float64, x tensor.Tensor) tensor.Tensor {
		return x.Scale(-1)
	}
	grid := Linspace(0, 2, 400)
	got, err := Integrate(f, NewRK4(), grid, tensor.FromSlice([]float64{1}, 1))
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	want := math.Exp(-2)
	if math.Abs(got.Data[0]-want) > 1e-9 {
		t.Errorf("x(2) = %.12f, want %.12f", got.Data[0], want)
	}
}

func TestIntegrate_DescendingGrid(t *testing.T) {
	// Integrating dx/dt = -x from t=2 back to t=0 inverts the decay.
	f := func(_ float64, x tensor.Tensor) tensor.Tensor {
		return x.Scale(-1)
	}
	grid := Reverse(Linspace(0, 2, 400))
	x2 := tensor.FromSlice([]float64{math.Exp(-2)}, 1)
	got, err := Integrate(f, NewRK4(), grid, x2)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if math.Abs(got.Data[0]-1) > 1e-9 {
		t.Errorf("x(0) = %.12f, want 1", got.Data[0])
	}
}

func TestIntegrate_InvalidGrid(t *testing.T) {
	f := func(_ float64, x tensor.Tensor) tensor.Tensor { return x }
	_, err := Integrate(f, NewEuler(), []float64{0.5}, tensor.New(1))
	if !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("single-point grid: got %v, want ErrInvalidGrid", err)
	}
}

func TestIntegrate_ShapeMismatch(t *testing.T) {
	bad := func(_ float64, _ tensor.Tensor) tensor.Tensor {
		return tensor.New(3)
	}
	_, err := Integrate(bad, NewEuler(), Linspace(0, 1, 10), tensor.New(2))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("mismatched derivative: got %v, want ErrShapeMismatch", err)
	}
}

func TestIntegrate_DoesNotMutateInputs(t *testing.T) {
	f := func(_ float64, x tensor.Tensor) tensor.Tensor {
		return tensor.OnesLike(x)
	}
	grid := []float64{0, 0.5, 1}
	x0 := tensor.FromSlice([]float64{7}, 1)
	if _, err := Integrate(f, NewEuler(), grid, x0); err != nil {
		t.Fatal(err)
	}
	if x0.Data[0] != 7 {
		t.Error("Integrate mutated x0")
	}
	if grid[0] != 0 || grid[1] != 0.5 || grid[2] != 1 {
		t.Error("Integrate mutated the grid")
	}
}

func TestIntegrateStates(t *testing.T) {
	f := func(_ float64, x tensor.Tensor) tensor.Tensor {
		return tensor.OnesLike(x)
	}
	grid := Linspace(0, 1, 11)
	states, err := IntegrateStates(f, NewEuler(), grid, tensor.FromSlice([]float64{0}, 1))
	if err != nil {
		t.Fatalf("IntegrateStates: %v", err)
	}
	if len(states) != len(grid) {
		t.Fatalf("got %d states for %d grid points", len(states), len(grid))
	}
	if states[0].Data[0] != 0 {
		t.Errorf("first state = %v, want 0", states[0].Data[0])
	}
	// dx/dt = 1 integrates exactly with Euler.
	if math.Abs(states[10].Data[0]-1) > 1e-12 {
		t.Errorf("last state = %v, want 1", states[10].Data[0])
	}
	final, err := Integrate(f, NewEuler(), grid, tensor.FromSlice([]float64{0}, 1))
	if err != nil {
		t.Fatal(err)
	}
	if diff := states[10].MaxDiff(final); diff != 0 {
		t.Errorf("IntegrateStates final differs from Integrate by %.2e", diff)
	}
}
