package viz

import (
	"fmt"
	"strings"
)

type phaseBounds struct {
	xMin, xMax float64
	yMin, yMax float64
}

// PhaseCanvas draws component yIdx against component xIdx as a
// connected orbit on a bare braille canvas.
func PhaseCanvas(states [][]float64, xIdx, yIdx, width, height int) (*Canvas, error) {
	canvas, _, err := phaseCanvas(states, xIdx, yIdx, width, height)
	return canvas, err
}

// PhasePlot renders the same orbit framed with axis extents.
func PhasePlot(states [][]float64, xIdx, yIdx, width, height int) (string, error) {
	canvas, bb, err := phaseCanvas(states, xIdx, yIdx, width, height)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%8.2f ┌%s┐\n", bb.yMax, strings.Repeat("─", width)))
	for i, row := range canvas.Grid {
		if i == height/2 {
			b.WriteString(fmt.Sprintf("%8.2f │", (bb.yMax+bb.yMin)/2))
		} else {
			b.WriteString("         │")
		}
		b.WriteString(string(row))
		b.WriteString("│\n")
	}
	b.WriteString(fmt.Sprintf("%8.2f └%s┘\n", bb.yMin, strings.Repeat("─", width)))
	b.WriteString(fmt.Sprintf("         %-.2f%s%.2f\n", bb.xMin, strings.Repeat(" ", maxInt(1, width-12)), bb.xMax))
	b.WriteString(fmt.Sprintf("         x%d horizontal, x%d vertical\n", xIdx, yIdx))

	return b.String(), nil
}

func phaseCanvas(states [][]float64, xIdx, yIdx, width, height int) (*Canvas, phaseBounds, error) {
	var bb phaseBounds
	if len(states) == 0 {
		return nil, bb, fmt.Errorf("no data to plot")
	}
	if len(states[0]) <= xIdx || len(states[0]) <= yIdx {
		return nil, bb, fmt.Errorf("state dimension too small for axes x%d/x%d", xIdx, yIdx)
	}

	xData := make([]float64, len(states))
	yData := make([]float64, len(states))
	for i := range states {
		xData[i] = states[i][xIdx]
		yData[i] = states[i][yIdx]
	}

	bb.xMin, bb.xMax = xData[0], xData[0]
	bb.yMin, bb.yMax = yData[0], yData[0]
	for i := range xData {
		if xData[i] < bb.xMin {
			bb.xMin = xData[i]
		}
		if xData[i] > bb.xMax {
			bb.xMax = xData[i]
		}
		if yData[i] < bb.yMin {
			bb.yMin = yData[i]
		}
		if yData[i] > bb.yMax {
			bb.yMax = yData[i]
		}
	}
	xRange := bb.xMax - bb.xMin
	yRange := bb.yMax - bb.yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	canvas := NewCanvas(width, height)
	pw, ph := width*2, height*4
	px := func(v float64) int { return int(float64(pw-1) * (v - bb.xMin) / xRange) }
	py := func(v float64) int { return ph - 1 - int(float64(ph-1)*(v-bb.yMin)/yRange) }

	prevX, prevY := px(xData[0]), py(yData[0])
	canvas.Set(prevX, prevY)
	for i := 1; i < len(xData); i++ {
		x, y := px(xData[i]), py(yData[i])
		canvas.DrawLine(prevX, prevY, x, y)
		prevX, prevY = x, y
	}

	return canvas, bb, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
