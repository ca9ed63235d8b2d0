package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch(
		[]string{"a", "b"},
		[][]float64{{-1, 0, 1, 2}, {0, 1, 2}},
	)
	if g.Size() != 12 {
		t.Fatalf("expected 12 grid points, got %d", g.Size())
	}

	objective := func(_ context.Context, p map[string]float64) (float64, error) {
		da, db := p["a"]-1, p["b"]-2
		return da*da + db*db, nil
	}

	params, score, err := g.Search(context.Background(), objective)
	if err != nil {
		t.Fatal(err)
	}
	if params["a"] != 1 || params["b"] != 2 {
		t.Errorf("expected minimum at a=1 b=2, got a=%g b=%g", params["a"], params["b"])
	}
	if score != 0 {
		t.Errorf("expected score 0, got %g", score)
	}
}

func TestGridSearchSkipsBadPoints(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})

	objective := func(_ context.Context, p map[string]float64) (float64, error) {
		switch p["x"] {
		case 1:
			return 0, errors.New("boom")
		case 2:
			return math.NaN(), nil
		}
		return p["x"], nil
	}

	params, score, err := g.Search(context.Background(), objective)
	if err != nil {
		t.Fatal(err)
	}
	if params["x"] != 3 || score != 3 {
		t.Errorf("expected the only clean point x=3, got x=%g score=%g", params["x"], score)
	}
}

func TestGridSearchAllFail(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})

	objective := func(_ context.Context, _ map[string]float64) (float64, error) {
		return 0, errors.New("boom")
	}

	if _, _, err := g.Search(context.Background(), objective); !errors.Is(err, ErrNoEvaluations) {
		t.Fatalf("err = %v, want ErrNoEvaluations", err)
	}
}

func TestGridSearchCancel(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	objective := func(_ context.Context, _ map[string]float64) (float64, error) {
		calls++
		cancel()
		return 1, nil
	}

	if _, _, err := g.Search(ctx, objective); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("expected the search to stop after the first call, got %d", calls)
	}
}
