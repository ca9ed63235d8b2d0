package models

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odegrad/internal/tensor"
)

// LinearSystem is the field dx/dt = A x with a learnable square matrix
// A over vector states.
type LinearSystem struct {
	A tensor.Tensor
}

// NewLinearSystem draws A from N(0, 1/dim).
func NewLinearSystem(dim int, rng *rand.Rand) *LinearSystem {
	return &LinearSystem{A: tensor.Randn(rng, 1.0/math.Sqrt(float64(dim)), dim, dim)}
}

// NewLinearSystemFrom wraps an existing matrix without copying it.
func NewLinearSystemFrom(a tensor.Tensor) *LinearSystem {
	return &LinearSystem{A: a}
}

func (s *LinearSystem) Parameters() []tensor.Tensor {
	return []tensor.Tensor{s.A}
}

func (s *LinearSystem) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	k := s.A.Dim(0)
	out := tensor.New(k)
	av := mat.NewDense(k, k, s.A.Data)
	mat.NewVecDense(k, out.Data).MulVec(av, mat.NewVecDense(k, x.Data))
	return out
}

func (s *LinearSystem) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	k := s.A.Dim(0)
	out := s.Evaluate(t, x)
	av := mat.NewDense(k, k, s.A.Data)

	dx := tensor.New(k)
	mat.NewVecDense(k, dx.Data).MulVec(av.T(), mat.NewVecDense(k, cot.Data))

	da := tensor.New(k, k)
	mat.NewDense(k, k, da.Data).Outer(1, mat.NewVecDense(k, cot.Data), mat.NewVecDense(k, x.Data))
	return out, dx, []tensor.Tensor{da}
}
