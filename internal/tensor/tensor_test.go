package tensor

import (
	"math"
	"math/rand"
	"testing"
)

func TestTensor_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		data  []float64
		valid bool
	}{
		{"empty", []float64{}, true},
		{"normal", []float64{1.0, 2.0, 3.0}, true},
		{"zeros", []float64{0.0, 0.0}, true},
		{"with NaN", []float64{1.0, math.NaN()}, false},
		{"with +Inf", []float64{1.0, math.Inf(1)}, false},
		{"with -Inf", []float64{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ten := FromSlice(tt.data, len(tt.data))
			if got := ten.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestTensor_Norm(t *testing.T) {
	tests := []struct {
		data     []float64
		expected float64
	}{
		{[]float64{3, 4}, 5.0},
		{[]float64{1, 0}, 1.0},
		{[]float64{0, 0}, 0.0},
		{[]float64{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		ten := FromSlice(tt.data, len(tt.data))
		if got := ten.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.data, got, tt.expected)
		}
	}
}

func TestTensor_Arithmetic(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3}, 3)
	b := FromSlice([]float64{4, 5, 6}, 3)

	sum := a.Add(b)
	if sum.Data[0] != 5 || sum.Data[1] != 7 || sum.Data[2] != 9 {
		t.Errorf("Add failed: got %v", sum.Data)
	}

	diff := b.Sub(a)
	if diff.Data[0] != 3 || diff.Data[1] != 3 || diff.Data[2] != 3 {
		t.Errorf("Sub failed: got %v", diff.Data)
	}

	scaled := a.Scale(2)
	if scaled.Data[0] != 2 || scaled.Data[1] != 4 || scaled.Data[2] != 6 {
		t.Errorf("Scale failed: got %v", scaled.Data)
	}

	axpy := a.AddScaled(0.5, b)
	if axpy.Data[0] != 3 || axpy.Data[1] != 4.5 || axpy.Data[2] != 6 {
		t.Errorf("AddScaled failed: got %v", axpy.Data)
	}

	if a.Data[0] != 1 || b.Data[0] != 4 {
		t.Error("arithmetic mutated an operand")
	}
}

func TestTensor_CloneIndependence(t *testing.T) {
	a := FromSlice([]float64{1, 2}, 2)
	c := a.Clone()
	c.Data[0] = 99
	if a.Data[0] == 99 {
		t.Error("Clone did not create independent copy")
	}
}

func TestTensor_ShapeOps(t *testing.T) {
	m := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)

	if m.Rank() != 2 || m.Dim(0) != 2 || m.Dim(1) != 3 {
		t.Errorf("shape accessors wrong: rank=%d dims=%v", m.Rank(), m.Shape())
	}
	if m.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", m.At(1, 2))
	}

	m.Set(42, 0, 1)
	if m.At(0, 1) != 42 {
		t.Errorf("Set/At round trip failed: got %v", m.At(0, 1))
	}

	v := m.Reshape(6)
	if v.Rank() != 1 || v.Len() != 6 {
		t.Errorf("Reshape gave shape %v", v.Shape())
	}
	v.Data[0] = -1
	if m.Data[0] != -1 {
		t.Error("Reshape should share the buffer")
	}

	if !m.SameShape(New(2, 3)) {
		t.Error("SameShape(2x3, 2x3) = false")
	}
	if m.SameShape(New(3, 2)) {
		t.Error("SameShape(2x3, 3x2) = true")
	}
	if m.SameShape(New(6)) {
		t.Error("SameShape(2x3, 6) = true")
	}
}

func TestTensor_ShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Add on mismatched shapes did not panic")
		}
	}()
	New(2).Add(New(3))
}

func TestTensor_Scalar(t *testing.T) {
	s := Scalar(3.5)
	if s.Rank() != 0 || s.Len() != 1 || s.Data[0] != 3.5 {
		t.Errorf("Scalar: rank=%d len=%d data=%v", s.Rank(), s.Len(), s.Data)
	}
}

func TestTensor_Dot(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3}, 3)
	b := FromSlice([]float64{4, 5, 6}, 3)
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
}

func TestTensor_MaxDiff(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3}, 3)
	b := FromSlice([]float64{1, 2.5, 2}, 3)
	if got := a.MaxDiff(b); math.Abs(got-1.0) > 1e-15 {
		t.Errorf("MaxDiff = %v, want 1.0", got)
	}
}

func TestRandn(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	r := Randn(rng, 0.1, 4, 2)
	if r.Len() != 8 {
		t.Errorf("Randn len = %d, want 8", r.Len())
	}
	if !r.IsValid() {
		t.Error("Randn produced non-finite values")
	}
	allZero := true
	for _, v := range r.Data {
		if v != 0 {
			allZero = false
		}
	}
	if allZero {
		t.Error("Randn produced all zeros")
	}
}
