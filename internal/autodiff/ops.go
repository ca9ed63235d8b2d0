package autodiff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/odegrad/internal/tensor"
)

// Add returns v + other elementwise.
func (v *Value) Add(other *Value) *Value {
	out := &Value{Data: v.Data.Add(other.Data), inputs: []*Value{v, other}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot, cot}
	}
	return out
}

// Sub returns v - other elementwise.
func (v *Value) Sub(other *Value) *Value {
	out := &Value{Data: v.Data.Sub(other.Data), inputs: []*Value{v, other}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot, cot.Neg()}
	}
	return out
}

// Mul returns the elementwise product.
func (v *Value) Mul(other *Value) *Value {
	out := &Value{Data: v.Data.Mul(other.Data), inputs: []*Value{v, other}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.Mul(other), cot.Mul(v)}
	}
	return out
}

// Neg returns -v.
func (v *Value) Neg() *Value {
	return v.Scale(-1)
}

// Scale returns s * v for a plain scalar s.
func (v *Value) Scale(s float64) *Value {
	out := &Value{Data: v.Data.Scale(s), inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.Scale(s)}
	}
	return out
}

// Exp returns e^v elementwise.
func (v *Value) Exp() *Value {
	out := &Value{Data: v.Data.Apply(math.Exp), inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.Mul(out)}
	}
	return out
}

// Sin returns sin(v) elementwise.
func (v *Value) Sin() *Value {
	out := &Value{Data: v.Data.Apply(math.Sin), inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.Mul(v.Cos())}
	}
	return out
}

// Cos returns cos(v) elementwise.
func (v *Value) Cos() *Value {
	out := &Value{Data: v.Data.Apply(math.Cos), inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.Mul(v.Sin()).Neg()}
	}
	return out
}

// Tanh returns tanh(v) elementwise.
func (v *Value) Tanh() *Value {
	out := &Value{Data: v.Data.Apply(math.Tanh), inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		// d tanh = 1 - tanh^2, folded as cot - cot*out*out.
		return []*Value{cot.Sub(cot.Mul(out).Mul(out))}
	}
	return out
}

// MatMul returns the matrix product v @ other for rank-2 operands.
func (v *Value) MatMul(other *Value) *Value {
	out := &Value{Data: matmul(v.Data, other.Data), inputs: []*Value{v, other}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{
			cot.MatMul(other.Transpose()),
			v.Transpose().MatMul(cot),
		}
	}
	return out
}

// Transpose returns the rank-2 transpose.
func (v *Value) Transpose() *Value {
	out := &Value{Data: transpose(v.Data), inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.Transpose()}
	}
	return out
}

// RepeatRows stacks a length-k vector into an [n, k] matrix.
func (v *Value) RepeatRows(n int) *Value {
	if v.Data.Rank() != 1 {
		panic(fmt.Sprintf("autodiff: RepeatRows needs a vector, got shape %s", v.Data.ShapeString()))
	}
	k := v.Data.Dim(0)
	data := tensor.New(n, k)
	for i := 0; i < n; i++ {
		copy(data.Data[i*k:(i+1)*k], v.Data.Data)
	}
	out := &Value{Data: data, inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.SumRows()}
	}
	return out
}

// SumRows collapses an [n, k] matrix to a length-k vector by summing
// over rows.
func (v *Value) SumRows() *Value {
	if v.Data.Rank() != 2 {
		panic(fmt.Sprintf("autodiff: SumRows needs a matrix, got shape %s", v.Data.ShapeString()))
	}
	n, k := v.Data.Dim(0), v.Data.Dim(1)
	data := tensor.New(k)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			data.Data[j] += v.Data.Data[i*k+j]
		}
	}
	out := &Value{Data: data, inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.RepeatRows(n)}
	}
	return out
}

// ConcatCols joins two matrices with equal row counts side by side.
func (v *Value) ConcatCols(other *Value) *Value {
	a, b := v.Data, other.Data
	if a.Rank() != 2 || b.Rank() != 2 || a.Dim(0) != b.Dim(0) {
		panic(fmt.Sprintf("autodiff: ConcatCols shapes %s and %s", a.ShapeString(), b.ShapeString()))
	}
	n, p, q := a.Dim(0), a.Dim(1), b.Dim(1)
	data := tensor.New(n, p+q)
	for i := 0; i < n; i++ {
		copy(data.Data[i*(p+q):i*(p+q)+p], a.Data[i*p:(i+1)*p])
		copy(data.Data[i*(p+q)+p:(i+1)*(p+q)], b.Data[i*q:(i+1)*q])
	}
	out := &Value{Data: data, inputs: []*Value{v, other}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.SliceCols(0, p), cot.SliceCols(p, p+q)}
	}
	return out
}

// SliceCols returns columns [from, to) of a matrix.
func (v *Value) SliceCols(from, to int) *Value {
	a := v.Data
	if a.Rank() != 2 || from < 0 || to > a.Dim(1) || from >= to {
		panic(fmt.Sprintf("autodiff: SliceCols(%d, %d) of shape %s", from, to, a.ShapeString()))
	}
	n, k := a.Dim(0), a.Dim(1)
	w := to - from
	data := tensor.New(n, w)
	for i := 0; i < n; i++ {
		copy(data.Data[i*w:(i+1)*w], a.Data[i*k+from:i*k+to])
	}
	out := &Value{Data: data, inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.padCols(from, k)}
	}
	return out
}

// padCols embeds an [n, w] matrix into columns [from, from+w) of an
// [n, total] zero matrix. Inverse of SliceCols for gradient routing.
func (v *Value) padCols(from, total int) *Value {
	a := v.Data
	n, w := a.Dim(0), a.Dim(1)
	data := tensor.New(n, total)
	for i := 0; i < n; i++ {
		copy(data.Data[i*total+from:i*total+from+w], a.Data[i*w:(i+1)*w])
	}
	out := &Value{Data: data, inputs: []*Value{v}}
	out.vjp = func(cot *Value) []*Value {
		return []*Value{cot.SliceCols(from, from+w)}
	}
	return out
}

func matmul(a, b tensor.Tensor) tensor.Tensor {
	if a.Rank() != 2 || b.Rank() != 2 || a.Dim(1) != b.Dim(0) {
		panic(fmt.Sprintf("autodiff: matmul shapes %s and %s", a.ShapeString(), b.ShapeString()))
	}
	ra, ca := a.Dim(0), a.Dim(1)
	cb := b.Dim(1)
	out := tensor.New(ra, cb)
	om := mat.NewDense(ra, cb, out.Data)
	om.Mul(mat.NewDense(ra, ca, a.Data), mat.NewDense(ca, cb, b.Data))
	return out
}

func transpose(a tensor.Tensor) tensor.Tensor {
	r, c := a.Dim(0), a.Dim(1)
	out := tensor.New(c, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Data[j*r+i] = a.Data[i*c+j]
		}
	}
	return out
}
