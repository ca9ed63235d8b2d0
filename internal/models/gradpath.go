package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/odegrad/internal/autodiff"
	"github.com/san-kum/odegrad/internal/tensor"
)

// GradPathNet splits a [rows, 2*features] state into column halves and
// routes them through one shared dense tanh layer. The left half maps
// through the layer directly; the right half maps to the gradient of
// the layer's output with respect to its input, pulled back with a
// ones cotangent. Both halves are concatenated back to the state's
// shape, and because the pullback is an expression graph the whole
// field stays differentiable.
type GradPathNet struct {
	W tensor.Tensor
	B tensor.Tensor
}

// NewGradPathNet initializes the shared layer with N(0, 1/features)
// weights and a zero bias. States must carry 2*features columns.
func NewGradPathNet(features int, rng *rand.Rand) *GradPathNet {
	s := 1.0 / math.Sqrt(float64(features))
	return &GradPathNet{
		W: tensor.Randn(rng, s, features, features),
		B: tensor.New(features),
	}
}

func (g *GradPathNet) Parameters() []tensor.Tensor {
	return []tensor.Tensor{g.W, g.B}
}

func gradPathGraph(x, w, b *autodiff.Value) *autodiff.Value {
	n := x.Data.Dim(0)
	f := w.Data.Dim(0)
	layer := func(in *autodiff.Value) *autodiff.Value {
		return in.MatMul(w).Add(b.RepeatRows(n)).Tanh()
	}

	left := layer(x.SliceCols(0, f))

	right := x.SliceCols(f, 2*f)
	inner := autodiff.Backward(layer(right), autodiff.Var(tensor.Ones(n, f)))
	return left.ConcatCols(inner[right])
}

func (g *GradPathNet) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	out := gradPathGraph(autodiff.Var(x), autodiff.Var(g.W), autodiff.Var(g.B))
	return out.Data
}

func (g *GradPathNet) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	leaf := autodiff.Var(x)
	w, b := autodiff.Var(g.W), autodiff.Var(g.B)
	out := gradPathGraph(leaf, w, b)

	grads := autodiff.Backward(out, autodiff.Var(cot))
	dx := autodiff.GradOf(grads, leaf)
	return out.Data, dx, []tensor.Tensor{autodiff.GradOf(grads, w), autodiff.GradOf(grads, b)}
}
