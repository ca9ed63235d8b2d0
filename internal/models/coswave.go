package models

import (
	"math"

	"github.com/san-kum/odegrad/internal/autodiff"
	"github.com/san-kum/odegrad/internal/tensor"
)

// CosWave is the field dx/dt = t * cos(t * x), applied elementwise.
type CosWave struct{}

func NewCosWave() *CosWave {
	return &CosWave{}
}

func (*CosWave) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	return x.Apply(func(v float64) float64 { return t * math.Cos(t*v) })
}

func (*CosWave) Parameters() []tensor.Tensor { return nil }

func (m *CosWave) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	out := m.Evaluate(t, x)
	dx := tensor.ZerosLike(x)
	for i, v := range x.Data {
		dx.Data[i] = cot.Data[i] * -t * t * math.Sin(t*v)
	}
	return out, dx, nil
}

// CosWaveGrad realizes the same field as [CosWave] indirectly: the
// derivative of sin(t * x) is pulled out of an expression graph with a
// ones cotangent instead of being written down as t * cos(t * x). The
// pullback is itself a graph, so VJP can differentiate through it.
type CosWaveGrad struct{}

func NewCosWaveGrad() *CosWaveGrad {
	return &CosWaveGrad{}
}

func (*CosWaveGrad) graph(t float64, x tensor.Tensor) (*autodiff.Value, *autodiff.Value) {
	leaf := autodiff.Var(x)
	inner := autodiff.Backward(leaf.Scale(t).Sin(), autodiff.Var(tensor.OnesLike(x)))
	return inner[leaf], leaf
}

func (m *CosWaveGrad) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	out, _ := m.graph(t, x)
	return out.Data
}

func (*CosWaveGrad) Parameters() []tensor.Tensor { return nil }

func (m *CosWaveGrad) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	out, leaf := m.graph(t, x)
	outer := autodiff.Backward(out, autodiff.Var(cot))
	return out.Data, autodiff.GradOf(outer, leaf), nil
}
