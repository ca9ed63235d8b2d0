package solvers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced grid points from t0 to t1 inclusive.
// n must be at least 2.
func Linspace(t0, t1 float64, n int) []float64 {
	if n < 2 {
		panic(fmt.Sprintf("solvers: linspace needs at least 2 points, got %d", n))
	}
	return floats.Span(make([]float64, n), t0, t1)
}

// ValidateGrid checks that grid has at least two points and is strictly
// monotonic. Ascending and descending grids are both accepted; step signs
// follow from consecutive differences.
func ValidateGrid(grid []float64) error {
	if len(grid) < 2 {
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidGrid, len(grid))
	}
	ascending := grid[1] > grid[0]
	for i := 0; i+1 < len(grid); i++ {
		d := grid[i+1] - grid[i]
		if math.IsNaN(d) || d == 0 || (d > 0) != ascending {
			return fmt.Errorf("%w: not strictly monotonic at index %d (%g to %g)",
				ErrInvalidGrid, i, grid[i], grid[i+1])
		}
	}
	return nil
}

// IsAscending reports the direction of a validated grid.
func IsAscending(grid []float64) bool {
	return grid[len(grid)-1] > grid[0]
}

// Reverse returns a reversed copy of grid.
func Reverse(grid []float64) []float64 {
	r := make([]float64, len(grid))
	for i, t := range grid {
		r[len(grid)-1-i] = t
	}
	return r
}
