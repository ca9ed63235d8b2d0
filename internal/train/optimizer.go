package train

import (
	"math"

	"github.com/san-kum/odegrad/internal/tensor"
)

// Optimizer applies one update to params from matching gradients.
// Implementations keep per-parameter state across calls; Reset clears
// it for a fresh run.
type Optimizer interface {
	Step(params, grads []tensor.Tensor)
	Reset()
	Name() string
}

// SGD is gradient descent with optional momentum.
type SGD struct {
	LR       float64
	Momentum float64

	vel []tensor.Tensor
}

func NewSGD(lr float64) *SGD {
	return &SGD{LR: lr}
}

func NewSGDWithMomentum(lr, momentum float64) *SGD {
	return &SGD{LR: lr, Momentum: momentum}
}

func (o *SGD) Step(params, grads []tensor.Tensor) {
	if o.Momentum == 0 {
		for i, p := range params {
			p.AddScaledInPlace(-o.LR, grads[i])
		}
		return
	}
	if len(o.vel) != len(params) {
		o.vel = make([]tensor.Tensor, len(params))
		for i, p := range params {
			o.vel[i] = tensor.ZerosLike(p)
		}
	}
	// v = momentum*v + g, then w -= lr*v
	for i, p := range params {
		v := o.vel[i]
		for j := range v.Data {
			v.Data[j] = o.Momentum*v.Data[j] + grads[i].Data[j]
		}
		p.AddScaledInPlace(-o.LR, v)
	}
}

func (o *SGD) Reset() {
	o.vel = nil
}

func (o *SGD) Name() string {
	if o.Momentum > 0 {
		return "sgd-momentum"
	}
	return "sgd"
}

// Adam keeps bias-corrected first and second moment estimates per
// parameter element.
type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64

	step int
	m, v []tensor.Tensor
}

// NewAdam uses the customary betas 0.9/0.999 and eps 1e-8.
func NewAdam(lr float64) *Adam {
	return &Adam{LR: lr, Beta1: 0.9, Beta2: 0.999, Eps: 1e-8}
}

func (o *Adam) Step(params, grads []tensor.Tensor) {
	if len(o.m) != len(params) {
		o.m = make([]tensor.Tensor, len(params))
		o.v = make([]tensor.Tensor, len(params))
		for i, p := range params {
			o.m[i] = tensor.ZerosLike(p)
			o.v[i] = tensor.ZerosLike(p)
		}
	}
	o.step++
	bc1 := 1 - math.Pow(o.Beta1, float64(o.step))
	bc2 := 1 - math.Pow(o.Beta2, float64(o.step))

	for i, p := range params {
		m, v := o.m[i], o.v[i]
		for j := range p.Data {
			g := grads[i].Data[j]
			m.Data[j] = o.Beta1*m.Data[j] + (1-o.Beta1)*g
			v.Data[j] = o.Beta2*v.Data[j] + (1-o.Beta2)*g*g
			p.Data[j] -= o.LR * (m.Data[j] / bc1) / (math.Sqrt(v.Data[j]/bc2) + o.Eps)
		}
	}
}

func (o *Adam) Reset() {
	o.step = 0
	o.m = nil
	o.v = nil
}

func (o *Adam) Name() string { return "adam" }
