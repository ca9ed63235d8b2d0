// Package autodiff implements reverse-mode automatic differentiation over
// [tensor.Tensor] expression graphs.
//
// A [Value] wraps a tensor and remembers how it was produced. [Backward]
// pulls a cotangent from an output back to every reachable input by the
// chain rule. Pullbacks are built out of Value operations themselves, so
// a gradient is again a differentiable expression; models that expose
// derivatives of inner expressions as outputs stay differentiable end to
// end.
package autodiff

import (
	"github.com/san-kum/odegrad/internal/tensor"
)

// Value is a node in an expression graph. Data holds the forward result;
// inputs and vjp record how to distribute an output cotangent.
type Value struct {
	Data   tensor.Tensor
	inputs []*Value
	vjp    func(cot *Value) []*Value
}

// Var wraps a tensor as a graph leaf.
func Var(t tensor.Tensor) *Value {
	return &Value{Data: t}
}

// Backward propagates cot from out to every reachable node and returns
// the accumulated gradients. Nodes that do not influence out are absent
// from the result; use [GradOf] for a zero-filled default.
func Backward(out *Value, cot *Value) map[*Value]*Value {
	if !cot.Data.SameShape(out.Data) {
		panic("autodiff: cotangent shape differs from output shape")
	}
	order := topoSort(out)
	grads := map[*Value]*Value{out: cot}
	for i := len(order) - 1; i >= 0; i-- {
		v := order[i]
		g, ok := grads[v]
		if !ok || v.vjp == nil {
			continue
		}
		ins := v.vjp(g)
		for j, in := range v.inputs {
			if ins[j] == nil {
				continue
			}
			if acc, ok := grads[in]; ok {
				grads[in] = acc.Add(ins[j])
			} else {
				grads[in] = ins[j]
			}
		}
	}
	return grads
}

// GradOf extracts the gradient tensor for v, zero-shaped like v when v
// never influenced the output.
func GradOf(grads map[*Value]*Value, v *Value) tensor.Tensor {
	if g, ok := grads[v]; ok {
		return g.Data
	}
	return tensor.ZerosLike(v.Data)
}

func topoSort(out *Value) []*Value {
	var order []*Value
	seen := map[*Value]bool{}
	var visit func(v *Value)
	visit = func(v *Value) {
		if seen[v] {
			return
		}
		seen[v] = true
		for _, in := range v.inputs {
			visit(in)
		}
		order = append(order, v)
	}
	visit(out)
	return order
}
