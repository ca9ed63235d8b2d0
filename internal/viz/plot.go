package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odegrad/internal/analysis"
)

// PlotSeries charts one state component across the trajectory.
func PlotSeries(states [][]float64, component int, caption string) string {
	data := make([]float64, len(states))
	for i, s := range states {
		if component < len(s) {
			data[i] = s[component]
		}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// PlotLoss charts a loss history, switching to log10 when every entry
// is positive so late epochs stay visible.
func PlotLoss(losses []float64) string {
	data, caption := logScale(losses)
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(caption),
	)
}

// PlotSpectrum charts magnitude per frequency bin.
func PlotSpectrum(spectrum []float64, caption string) string {
	return asciigraph.Plot(spectrum,
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Caption(caption),
	)
}

// PlotConvergence charts log10 endpoint error against refinement level
// for each study, one chart per stepper.
func PlotConvergence(studies []analysis.OrderStudy) string {
	var b strings.Builder
	for i, study := range studies {
		data := make([]float64, len(study.Points))
		for j, p := range study.Points {
			if p.Err > 0 {
				data[j] = math.Log10(p.Err)
			}
		}
		caption := fmt.Sprintf("%s: log10 error, order ~ %.2f", study.Solver, study.EstimatedOrder())
		b.WriteString(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(caption),
		))
		if i < len(studies)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// logScale maps positive histories to log10. Any non-positive entry
// switches the chart back to linear, since a perfect fit would put
// -Inf on the axis.
func logScale(values []float64) ([]float64, string) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v <= 0 {
			return values, "loss per epoch"
		}
		out[i] = math.Log10(v)
	}
	return out, "log10 loss per epoch"
}
