package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/odegrad/internal/autodiff"
	"github.com/san-kum/odegrad/internal/tensor"
)

// DenseNet is a two-layer tanh network acting as an autonomous ODE
// field over [rows, features] states. Both layers are square so the
// output keeps the state's shape.
type DenseNet struct {
	W1, B1 tensor.Tensor
	W2, B2 tensor.Tensor
}

// NewDenseNet initializes both layers with N(0, 1/features) weights and
// zero biases.
func NewDenseNet(features int, rng *rand.Rand) *DenseNet {
	s := 1.0 / math.Sqrt(float64(features))
	return &DenseNet{
		W1: tensor.Randn(rng, s, features, features),
		B1: tensor.New(features),
		W2: tensor.Randn(rng, s, features, features),
		B2: tensor.New(features),
	}
}

// Parameters returns the live weight tensors in layer order.
func (d *DenseNet) Parameters() []tensor.Tensor {
	return []tensor.Tensor{d.W1, d.B1, d.W2, d.B2}
}

func denseGraph(x, w1, b1, w2, b2 *autodiff.Value) *autodiff.Value {
	n := x.Data.Dim(0)
	h := x.MatMul(w1).Add(b1.RepeatRows(n)).Tanh()
	return h.MatMul(w2).Add(b2.RepeatRows(n)).Tanh()
}

func (d *DenseNet) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	out := denseGraph(autodiff.Var(x), autodiff.Var(d.W1), autodiff.Var(d.B1), autodiff.Var(d.W2), autodiff.Var(d.B2))
	return out.Data
}

func (d *DenseNet) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	leaf := autodiff.Var(x)
	params := []*autodiff.Value{autodiff.Var(d.W1), autodiff.Var(d.B1), autodiff.Var(d.W2), autodiff.Var(d.B2)}
	out := denseGraph(leaf, params[0], params[1], params[2], params[3])

	grads := autodiff.Backward(out, autodiff.Var(cot))
	dparams := make([]tensor.Tensor, len(params))
	for i, p := range params {
		dparams[i] = autodiff.GradOf(grads, p)
	}
	return out.Data, autodiff.GradOf(grads, leaf), dparams
}
