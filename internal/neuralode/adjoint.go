package neuralode

import (
	"github.com/san-kum/odegrad/internal/tensor"
)

// augmented flattens (state, adjoint, parameter accumulators) into one
// rank-1 tensor so the plain steppers integrate the whole bundle. The
// layout is [x | a | g_0 | g_1 | ...] with offsets fixed at construction.
type augmented struct {
	dyn        Dynamics
	stateShape []int
	stateLen   int
	paramLens  []int
	total      int
}

func newAugmented(dyn Dynamics, state tensor.Tensor) *augmented {
	a := &augmented{
		dyn:        dyn,
		stateShape: state.Shape(),
		stateLen:   state.Len(),
	}
	a.total = 2 * a.stateLen
	for _, p := range dyn.Parameters() {
		a.paramLens = append(a.paramLens, p.Len())
		a.total += p.Len()
	}
	return a
}

// pack builds the initial bundle: final state, endpoint cotangent, and
// zeroed accumulators.
func (a *augmented) pack(x, adj tensor.Tensor) tensor.Tensor {
	z := tensor.New(a.total)
	copy(z.Data[:a.stateLen], x.Data)
	copy(z.Data[a.stateLen:2*a.stateLen], adj.Data)
	return z
}

// unpack splits an integrated bundle back into the reconstructed state,
// the adjoint, and one gradient tensor per parameter (shaped like the
// parameters). The grads slice is non-nil even with no parameters.
func (a *augmented) unpack(z tensor.Tensor, params []tensor.Tensor) (x, adj tensor.Tensor, grads []tensor.Tensor) {
	x = tensor.FromSlice(z.Data[:a.stateLen], a.stateShape...)
	adj = tensor.FromSlice(z.Data[a.stateLen:2*a.stateLen], a.stateShape...)
	grads = make([]tensor.Tensor, 0, len(params))
	off := 2 * a.stateLen
	for i, p := range params {
		grads = append(grads, tensor.FromSlice(z.Data[off:off+a.paramLens[i]], p.Shape()...))
		off += a.paramLens[i]
	}
	return x, adj, grads
}

// derivative is the augmented vector field integrated over the reversed
// grid. One VJP call with the current adjoint as cotangent yields every
// slot: the state keeps the forward field f, while the adjoint and the
// accumulators receive the negated pullbacks, so that running the grid
// backward reconstructs x and accumulates
//
//	dL/dx0 = a(t0),  dL/dW = integral of a^T df/dW over [t0, tN].
//
// Shapes are validated once in Backward before integration starts.
func (a *augmented) derivative(t float64, z tensor.Tensor) tensor.Tensor {
	x := tensor.FromSlice(z.Data[:a.stateLen], a.stateShape...)
	adj := tensor.FromSlice(z.Data[a.stateLen:2*a.stateLen], a.stateShape...)

	out, dx, dparams := a.dyn.VJP(t, x, adj)

	dz := tensor.New(a.total)
	copy(dz.Data[:a.stateLen], out.Data)
	for i, v := range dx.Data {
		dz.Data[a.stateLen+i] = -v
	}
	off := 2 * a.stateLen
	for j, dp := range dparams {
		for i, v := range dp.Data {
			dz.Data[off+i] = -v
		}
		off += a.paramLens[j]
	}
	return dz
}
