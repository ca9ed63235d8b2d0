package experiment

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/odegrad/internal/solvers"
)

func TestRegistryListsModels(t *testing.T) {
	reg := NewRegistry()
	names := reg.ListModels()

	for _, want := range []string{"sine-decay", "double-sine-decay", "coswave", "coswave-grad", "dense", "gradpath", "linear"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ListModels() missing %q", want)
		}
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("ListModels() not sorted: %v", names)
		}
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.GetModel("lorenz", rand.New(rand.NewSource(1)))
	if err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Fatalf("err = %v, want unknown model", err)
	}
	if _, err := reg.DefaultState("lorenz", rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("DefaultState accepted an unknown model")
	}
}

func TestExperimentRun(t *testing.T) {
	e := New(Config{
		Model:      "sine-decay",
		Solver:     "rk4",
		T0:         0,
		T1:         1,
		GridPoints: 50,
		InitState:  []float64{0},
		Seed:       1,
	})
	if err := e.Setup(NewRegistry()); err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(res.States) != 50 || len(res.Times) != 50 {
		t.Fatalf("trajectory has %d states over %d times, want 50/50", len(res.States), len(res.Times))
	}
	if res.Times[0] != 0 || res.Times[len(res.Times)-1] != 1 {
		t.Errorf("times span [%g, %g], want [0, 1]", res.Times[0], res.Times[len(res.Times)-1])
	}
	want := math.Log(2 - math.Cos(1))
	if d := math.Abs(res.Final.Data[0] - want); d > 1e-6 {
		t.Errorf("final state %g, want %g", res.Final.Data[0], want)
	}
	if res.Metrics["endpoint_norm"] <= 0 {
		t.Error("endpoint_norm metric missing")
	}
	// The solution grows monotonically from 0, so the path length is the
	// endpoint value itself.
	if d := math.Abs(res.Metrics["path_length"] - res.Final.Data[0]); d > 1e-12 {
		t.Errorf("path_length %g, want %g", res.Metrics["path_length"], res.Final.Data[0])
	}
	if res.Metrics["stability"] != 1 {
		t.Errorf("stability %g, want 1", res.Metrics["stability"])
	}
}

func TestExperimentDefaultState(t *testing.T) {
	e := New(Config{Model: "dense", Solver: "rk4", T0: 0, T1: 1, GridPoints: 20, Seed: 7})
	if err := e.Setup(NewRegistry()); err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Final.ShapeString(); got != "[12 3]" {
		t.Errorf("final shape %s, want [12 3]", got)
	}
}

func TestExperimentNotSetup(t *testing.T) {
	_, err := New(Config{}).Run(context.Background())
	if err == nil {
		t.Fatal("Run before Setup did not fail")
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	reg := NewRegistry()

	e := New(Config{Model: "sine-decay", Solver: "rk4", T0: 0, T1: 1, GridPoints: 1})
	if err := e.Setup(reg); !errors.Is(err, solvers.ErrInvalidGrid) {
		t.Errorf("1-point grid: err = %v, want ErrInvalidGrid", err)
	}

	e = New(Config{Model: "sine-decay", Solver: "rk45", T0: 0, T1: 1, GridPoints: 20})
	if err := e.Setup(reg); !errors.Is(err, solvers.ErrUnsupportedStepper) {
		t.Errorf("rk45: err = %v, want ErrUnsupportedStepper", err)
	}
}

func TestExperimentCompileTransparent(t *testing.T) {
	run := func(compile bool) []float64 {
		e := New(Config{Model: "dense", Solver: "rk4", T0: 0, T1: 1, GridPoints: 20, Seed: 5, Compile: compile})
		if err := e.Setup(NewRegistry()); err != nil {
			t.Fatal(err)
		}
		res, err := e.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return res.Final.Data
	}

	plain, fast := run(false), run(true)
	for i := range plain {
		if plain[i] != fast[i] {
			t.Fatalf("compiled run diverges at element %d: %g vs %g", i, plain[i], fast[i])
		}
	}
}

func TestSweepRunsAllVariants(t *testing.T) {
	s := &Sweep{
		Base:      Config{Model: "sine-decay", T0: 0, T1: 1, InitState: []float64{0}, Seed: 2},
		Solvers:   []string{"euler", "rk4"},
		GridSizes: []int{25, 50},
	}
	results, err := s.Run(context.Background(), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	cfgs := s.Configs()
	for i, res := range results {
		if res.Config.Solver != cfgs[i].Solver || res.Config.GridPoints != cfgs[i].GridPoints {
			t.Errorf("result %d is for %s@%d, want %s@%d", i,
				res.Config.Solver, res.Config.GridPoints, cfgs[i].Solver, cfgs[i].GridPoints)
		}
		if len(res.States) != cfgs[i].GridPoints {
			t.Errorf("result %d has %d states, want %d", i, len(res.States), cfgs[i].GridPoints)
		}
	}

	// rk4 beats euler at the same density on the same problem.
	exact := math.Log(2 - math.Cos(1))
	eulerErr := math.Abs(results[0].Final.Data[0] - exact)
	rk4Err := math.Abs(results[2].Final.Data[0] - exact)
	if rk4Err >= eulerErr {
		t.Errorf("rk4 error %.2e not below euler error %.2e", rk4Err, eulerErr)
	}
}

func TestSweepPropagatesErrors(t *testing.T) {
	s := &Sweep{
		Base:    Config{Model: "sine-decay", T0: 0, T1: 1, InitState: []float64{0}, GridPoints: 20},
		Solvers: []string{"rk4", "rk45"},
	}
	if _, err := s.Run(context.Background(), NewRegistry()); !errors.Is(err, solvers.ErrUnsupportedStepper) {
		t.Fatalf("err = %v, want ErrUnsupportedStepper", err)
	}
}
