package solvers

import (
	"math"
	"testing"

	"github.com/san-kum/odegrad/internal/tensor"
)

func benchDerivative(t float64, x tensor.Tensor) tensor.Tensor {
	out := tensor.ZerosLike(x)
	out.Data[0] = x.Data[1]
	out.Data[1] = -x.Data[0]
	return out
}

func BenchmarkEuler(b *testing.B) {
	st := NewEuler()
	x := tensor.FromSlice([]float64{1, 0}, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(benchDerivative, 0, 0.01, x)
	}
}

func BenchmarkRK2(b *testing.B) {
	st := NewRK2()
	x := tensor.FromSlice([]float64{1, 0}, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(benchDerivative, 0, 0.01, x)
	}
}

func BenchmarkRK4(b *testing.B) {
	st := NewRK4()
	x := tensor.FromSlice([]float64{1, 0}, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(benchDerivative, 0, 0.01, x)
	}
}

func BenchmarkRK4Compiled(b *testing.B) {
	st := NewRK4().Compiled()
	x := tensor.FromSlice([]float64{1, 0}, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(benchDerivative, 0, 0.01, x)
	}
}

func benchWide(t float64, x tensor.Tensor) tensor.Tensor {
	out := tensor.ZerosLike(x)
	for i := range x.Data {
		out.Data[i] = math.Sin(x.Data[i]) * 0.1
	}
	return out
}

func BenchmarkRK4_Wide64(b *testing.B) {
	st := NewRK4()
	x := tensor.New(64)
	for i := range x.Data {
		x.Data[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(benchWide, 0, 0.001, x)
	}
}

func BenchmarkRK4Compiled_Wide64(b *testing.B) {
	st := NewRK4().Compiled()
	x := tensor.New(64)
	for i := range x.Data {
		x.Data[i] = float64(i) * 0.1
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = st.Step(benchWide, 0, 0.001, x)
	}
}
