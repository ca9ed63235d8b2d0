package export

import (
	"strings"
	"testing"

	"github.com/san-kum/odegrad/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(3, 2)
	c.Set(0, 0)
	c.Set(5, 7)

	svg := CanvasToSVG(c, 4)
	if !strings.HasPrefix(svg, "<?xml") {
		t.Error("expected xml declaration")
	}
	// 3 chars * 2 sub-pixels * scale 4 = 24 wide, 2 * 4 * 4 = 32 tall.
	if !strings.Contains(svg, `width="24" height="32"`) {
		t.Errorf("expected 24x32 viewport, got %q", svg[:120])
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
}

func TestCanvasToSVGNil(t *testing.T) {
	if svg := CanvasToSVG(nil, 4); svg != "" {
		t.Errorf("expected empty output for nil canvas, got %q", svg)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 1, 0, -1}

	svg := TrajectoryToSVG(xs, ys, 200, 100, "#00ccff")
	if !strings.Contains(svg, `width="200" height="100"`) {
		t.Error("expected the requested viewport size")
	}
	if !strings.Contains(svg, `stroke="#00ccff"`) {
		t.Error("expected the requested stroke color")
	}
	if n := strings.Count(svg, " L"); n != 3 {
		t.Errorf("expected 3 line segments, got %d", n)
	}
	if strings.Contains(svg, "NaN") {
		t.Error("output contains NaN coordinates")
	}
}

func TestTrajectoryToSVGFlat(t *testing.T) {
	xs := []float64{0, 1, 2}
	ys := []float64{5, 5, 5}

	svg := TrajectoryToSVG(xs, ys, 100, 100, "#fff")
	if svg == "" {
		t.Fatal("expected output for a flat trajectory")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("zero y-range produced NaN coordinates")
	}
}

func TestTrajectoryToSVGTooShort(t *testing.T) {
	if svg := TrajectoryToSVG([]float64{1}, []float64{1}, 100, 100, "#fff"); svg != "" {
		t.Errorf("expected empty output for a single point, got %q", svg)
	}
	if svg := TrajectoryToSVG([]float64{1, 2}, []float64{1}, 100, 100, "#fff"); svg != "" {
		t.Errorf("expected mismatched lengths to truncate below 2 points, got %q", svg)
	}
}
