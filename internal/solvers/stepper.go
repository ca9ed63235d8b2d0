package solvers

import (
	"github.com/san-kum/odegrad/internal/tensor"
)

// DerivativeFunc evaluates dx/dt at time t and state x. Implementations
// must not retain or mutate x.
type DerivativeFunc func(t float64, x tensor.Tensor) tensor.Tensor

// Stepper advances a state by one step of signed size dt. Steppers never
// inspect the surrounding grid; direction comes entirely from dt's sign.
type Stepper interface {
	Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor
}

// StepperFunc adapts a plain step function to the Stepper interface.
type StepperFunc func(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor

func (s StepperFunc) Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	return s(f, t, dt, x)
}

// Compilable is implemented by steppers that can supply a scratch-buffer
// variant for repeated stepping over same-shaped states. The variant is
// not safe for concurrent use.
type Compilable interface {
	Compiled() Stepper
}

// EulerStep advances x by one explicit Euler step: x + dt*f(t, x).
func EulerStep(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	return x.AddScaled(dt, f(t, x))
}

// RK2Step advances x by one midpoint step: the derivative is re-evaluated
// at t+dt/2 on the Euler half-step and applied over the full dt.
func RK2Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	k1 := f(t, x)
	k2 := f(t+dt*0.5, x.AddScaled(dt*0.5, k1))
	return x.AddScaled(dt, k2)
}

// RK4Step advances x by one classical fourth-order Runge-Kutta step with
// stage weights 1, 2, 2, 1 over 6.
func RK4Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	k1 := f(t, x)
	k2 := f(t+dt*0.5, x.AddScaled(dt*0.5, k1))
	k3 := f(t+dt*0.5, x.AddScaled(dt*0.5, k2))
	k4 := f(t+dt, x.AddScaled(dt, k3))

	dt6 := dt / 6.0
	result := x.AddScaled(dt6, k1)
	result.AddScaledInPlace(2*dt6, k2)
	result.AddScaledInPlace(2*dt6, k3)
	result.AddScaledInPlace(dt6, k4)
	return result
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	return EulerStep(f, t, dt, x)
}

// Compiled returns e itself: Euler has no stage buffers to reuse.
func (e *Euler) Compiled() Stepper {
	return e
}

type RK2 struct{}

func NewRK2() *RK2 {
	return &RK2{}
}

func (r *RK2) Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	return RK2Step(f, t, dt, x)
}

func (r *RK2) Compiled() Stepper {
	return &compiledRK2{}
}

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	return RK4Step(f, t, dt, x)
}

func (r *RK4) Compiled() Stepper {
	return &compiledRK4{}
}

type compiledRK2 struct {
	scratch tensor.Tensor
}

func (r *compiledRK2) ensureScratch(x tensor.Tensor) {
	if !r.scratch.SameShape(x) {
		r.scratch = tensor.ZerosLike(x)
	}
}

func (r *compiledRK2) Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	r.ensureScratch(x)

	k1 := f(t, x)
	copy(r.scratch.Data, x.Data)
	r.scratch.AddScaledInPlace(dt*0.5, k1)
	k2 := f(t+dt*0.5, r.scratch)

	return x.AddScaled(dt, k2)
}

type compiledRK4 struct {
	k1, k2, k3, k4 tensor.Tensor
	scratch        tensor.Tensor
}

func (r *compiledRK4) ensureScratch(x tensor.Tensor) {
	if !r.scratch.SameShape(x) {
		r.k1 = tensor.ZerosLike(x)
		r.k2 = tensor.ZerosLike(x)
		r.k3 = tensor.ZerosLike(x)
		r.k4 = tensor.ZerosLike(x)
		r.scratch = tensor.ZerosLike(x)
	}
}

func (r *compiledRK4) Step(f DerivativeFunc, t, dt float64, x tensor.Tensor) tensor.Tensor {
	r.ensureScratch(x)

	copy(r.k1.Data, f(t, x).Data)

	copy(r.scratch.Data, x.Data)
	r.scratch.AddScaledInPlace(dt*0.5, r.k1)
	copy(r.k2.Data, f(t+dt*0.5, r.scratch).Data)

	copy(r.scratch.Data, x.Data)
	r.scratch.AddScaledInPlace(dt*0.5, r.k2)
	copy(r.k3.Data, f(t+dt*0.5, r.scratch).Data)

	copy(r.scratch.Data, x.Data)
	r.scratch.AddScaledInPlace(dt, r.k3)
	copy(r.k4.Data, f(t+dt, r.scratch).Data)

	dt6 := dt / 6.0
	result := x.AddScaled(dt6, r.k1)
	result.AddScaledInPlace(2*dt6, r.k2)
	result.AddScaledInPlace(2*dt6, r.k3)
	result.AddScaledInPlace(dt6, r.k4)
	return result
}
