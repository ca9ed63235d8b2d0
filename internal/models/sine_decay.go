package models

import (
	"math"

	"github.com/san-kum/odegrad/internal/tensor"
)

// SineDecay is the field dx/dt = sin(t) * exp(-x), applied elementwise.
// From x = 0 at t = 0 each component follows log(2 - cos(t)).
type SineDecay struct{}

func NewSineDecay() *SineDecay {
	return &SineDecay{}
}

func (*SineDecay) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	st := math.Sin(t)
	return x.Apply(func(v float64) float64 { return st * math.Exp(-v) })
}

func (*SineDecay) Parameters() []tensor.Tensor { return nil }

func (m *SineDecay) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	out := m.Evaluate(t, x)
	// df/dx is diagonal with entries -f.
	dx := cot.Mul(out).Neg()
	return out, dx, nil
}

// DoubleSineDecay pairs two damped trig fields over a 2-state vector:
//
//	dx0/dt = sin(t) * exp(-x0)
//	dx1/dt = cos(t)/2 * exp(-x1)
//
// From the origin the components follow log(2 - cos(t)) and
// log((sin(t) + 2) / 2).
type DoubleSineDecay struct{}

func NewDoubleSineDecay() *DoubleSineDecay {
	return &DoubleSineDecay{}
}

func (*DoubleSineDecay) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	out := tensor.ZerosLike(x)
	out.Data[0] = math.Sin(t) * math.Exp(-x.Data[0])
	out.Data[1] = 0.5 * math.Cos(t) * math.Exp(-x.Data[1])
	return out
}

func (*DoubleSineDecay) Parameters() []tensor.Tensor { return nil }

func (m *DoubleSineDecay) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	out := m.Evaluate(t, x)
	dx := cot.Mul(out).Neg()
	return out, dx, nil
}
