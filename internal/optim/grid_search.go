package optim

import (
	"context"
	"errors"
	"math"
)

// ErrNoEvaluations means every grid point failed or scored NaN.
var ErrNoEvaluations = errors.New("optim: no grid point evaluated successfully")

// Objective scores one parameter assignment. Lower is better. An error
// marks the point as unusable without aborting the search.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch evaluates an objective over the cartesian product of
// per-parameter candidate lists and keeps the minimizer.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch pairs parameter names with their candidate values:
// names[i] draws from ranges[i].
func NewGridSearch(names []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: names, ranges: ranges}
}

// Size returns the number of grid points Search will visit.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search walks the full grid and returns the best parameters with
// their score. It errors only on context cancellation or when no
// point evaluated at all.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoEvaluations
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		val, err := objective(ctx, current)
		if err != nil || math.IsNaN(val) {
			return nil
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
