package tensor

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Tensor is a dense row-major float64 array with a fixed shape.
// The zero value is an empty scalar-less tensor; use the constructors.
type Tensor struct {
	Data  []float64
	shape []int
}

// New returns a zero-filled tensor with the given shape. A call with no
// dimensions produces a scalar (one element, rank zero).
func New(shape ...int) Tensor {
	n := 1
	for _, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("tensor: negative dimension %d in shape %v", d, shape))
		}
		n *= d
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return Tensor{Data: make([]float64, n), shape: s}
}

// FromSlice copies data into a new tensor with the given shape.
func FromSlice(data []float64, shape ...int) Tensor {
	t := New(shape...)
	if len(data) != len(t.Data) {
		panic(fmt.Sprintf("tensor: shape %v needs %d elements, got %d", shape, len(t.Data), len(data)))
	}
	copy(t.Data, data)
	return t
}

// Scalar returns a rank-zero tensor holding v.
func Scalar(v float64) Tensor {
	t := New()
	t.Data[0] = v
	return t
}

// Zeros is an alias of New kept for call-site readability.
func Zeros(shape ...int) Tensor {
	return New(shape...)
}

// ZerosLike returns a zero tensor with t's shape.
func ZerosLike(t Tensor) Tensor {
	return New(t.shape...)
}

// Ones returns a one-filled tensor.
func Ones(shape ...int) Tensor {
	t := New(shape...)
	for i := range t.Data {
		t.Data[i] = 1
	}
	return t
}

// OnesLike returns a one-filled tensor with t's shape.
func OnesLike(t Tensor) Tensor {
	return Ones(t.shape...)
}

// Randn returns a tensor of standard normal samples drawn from rng,
// scaled by stddev.
func Randn(rng *rand.Rand, stddev float64, shape ...int) Tensor {
	t := New(shape...)
	for i := range t.Data {
		t.Data[i] = rng.NormFloat64() * stddev
	}
	return t
}

// Shape returns a copy of the tensor's shape.
func (t Tensor) Shape() []int {
	s := make([]int, len(t.shape))
	copy(s, t.shape)
	return s
}

// Rank returns the number of dimensions.
func (t Tensor) Rank() int {
	return len(t.shape)
}

// Dim returns the size of dimension i.
func (t Tensor) Dim(i int) int {
	return t.shape[i]
}

// Len returns the total number of elements.
func (t Tensor) Len() int {
	return len(t.Data)
}

// IsEmpty reports whether t is the zero Tensor: no data, no shape.
// Distinct from a rank-0 scalar, which holds one element.
func (t Tensor) IsEmpty() bool {
	return t.Data == nil && t.shape == nil
}

// SameShape reports whether t and other have identical shapes.
func (t Tensor) SameShape(other Tensor) bool {
	if len(t.shape) != len(other.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != other.shape[i] {
			return false
		}
	}
	return true
}

// ShapeString renders the shape for error messages, e.g. "[12 3]".
func (t Tensor) ShapeString() string {
	return fmt.Sprint(t.shape)
}

func (t Tensor) mustMatch(op string, other Tensor) {
	if !t.SameShape(other) {
		panic(fmt.Sprintf("tensor: %s shape mismatch %v vs %v", op, t.shape, other.shape))
	}
}

// Clone returns a deep copy.
func (t Tensor) Clone() Tensor {
	c := Tensor{Data: make([]float64, len(t.Data)), shape: make([]int, len(t.shape))}
	copy(c.Data, t.Data)
	copy(c.shape, t.shape)
	return c
}

// Add returns t + other.
func (t Tensor) Add(other Tensor) Tensor {
	t.mustMatch("add", other)
	r := t.Clone()
	floats.Add(r.Data, other.Data)
	return r
}

// Sub returns t - other.
func (t Tensor) Sub(other Tensor) Tensor {
	t.mustMatch("sub", other)
	r := t.Clone()
	floats.Sub(r.Data, other.Data)
	return r
}

// Mul returns the elementwise product t * other.
func (t Tensor) Mul(other Tensor) Tensor {
	t.mustMatch("mul", other)
	r := t.Clone()
	floats.Mul(r.Data, other.Data)
	return r
}

// Scale returns s * t.
func (t Tensor) Scale(s float64) Tensor {
	r := t.Clone()
	floats.Scale(s, r.Data)
	return r
}

// Neg returns -t.
func (t Tensor) Neg() Tensor {
	return t.Scale(-1)
}

// AddScaled returns t + s*other.
func (t Tensor) AddScaled(s float64, other Tensor) Tensor {
	t.mustMatch("addScaled", other)
	r := t.Clone()
	floats.AddScaled(r.Data, s, other.Data)
	return r
}

// AddScaledInPlace sets t = t + s*other, reusing t's buffer.
func (t Tensor) AddScaledInPlace(s float64, other Tensor) {
	t.mustMatch("addScaled", other)
	floats.AddScaled(t.Data, s, other.Data)
}

// Dot returns the inner product of t and other viewed as flat vectors.
func (t Tensor) Dot(other Tensor) float64 {
	t.mustMatch("dot", other)
	return floats.Dot(t.Data, other.Data)
}

// Norm returns the Euclidean norm over all elements.
func (t Tensor) Norm() float64 {
	return floats.Norm(t.Data, 2)
}

// MaxDiff returns the largest absolute elementwise difference.
func (t Tensor) MaxDiff(other Tensor) float64 {
	t.mustMatch("maxDiff", other)
	max := 0.0
	for i := range t.Data {
		if d := math.Abs(t.Data[i] - other.Data[i]); d > max {
			max = d
		}
	}
	return max
}

// IsValid reports whether every element is finite.
func (t Tensor) IsValid() bool {
	for _, v := range t.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// At returns the element at the given multi-index.
func (t Tensor) At(idx ...int) float64 {
	return t.Data[t.offset(idx)]
}

// Set writes the element at the given multi-index.
func (t Tensor) Set(v float64, idx ...int) {
	t.Data[t.offset(idx)] = v
}

func (t Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index %v for rank-%d tensor", idx, len(t.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.shape))
		}
		off = off*t.shape[i] + x
	}
	return off
}

// Reshape returns a view with a new shape sharing t's buffer. The element
// count must be unchanged.
func (t Tensor) Reshape(shape ...int) Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if n != len(t.Data) {
		panic(fmt.Sprintf("tensor: reshape %v to %v changes element count", t.shape, shape))
	}
	s := make([]int, len(shape))
	copy(s, shape)
	return Tensor{Data: t.Data, shape: s}
}

// Apply returns f mapped over every element.
func (t Tensor) Apply(f func(float64) float64) Tensor {
	r := t.Clone()
	for i, v := range r.Data {
		r.Data[i] = f(v)
	}
	return r
}

func (t Tensor) String() string {
	return fmt.Sprintf("Tensor%v%v", t.shape, t.Data)
}
