package neuralode

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/odegrad/internal/autodiff"
	"github.com/san-kum/odegrad/internal/solvers"
	"github.com/san-kum/odegrad/internal/tensor"
)

// paramDyn is a two-state field with three weights:
//
//	dx0/dt = w0*sin(t)*exp(-x0) + w1*x1
//	dx1/dt = w2*x0*cos(t)
type paramDyn struct {
	w tensor.Tensor
}

func newParamDyn() *paramDyn {
	return &paramDyn{w: tensor.FromSlice([]float64{1.3, -0.4, 0.7}, 3)}
}

func (d *paramDyn) Evaluate(t float64, x tensor.Tensor) tensor.Tensor {
	w := d.w.Data
	out := tensor.ZerosLike(x)
	out.Data[0] = w[0]*math.Sin(t)*math.Exp(-x.Data[0]) + w[1]*x.Data[1]
	out.Data[1] = w[2] * x.Data[0] * math.Cos(t)
	return out
}

func (d *paramDyn) Parameters() []tensor.Tensor { return []tensor.Tensor{d.w} }

func (d *paramDyn) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	w := d.w.Data
	out := d.Evaluate(t, x)

	dx := tensor.ZerosLike(x)
	dx.Data[0] = cot.Data[0]*-w[0]*math.Sin(t)*math.Exp(-x.Data[0]) + cot.Data[1]*w[2]*math.Cos(t)
	dx.Data[1] = cot.Data[0] * w[1]

	dw := tensor.ZerosLike(d.w)
	dw.Data[0] = cot.Data[0] * math.Sin(t) * math.Exp(-x.Data[0])
	dw.Data[1] = cot.Data[0] * x.Data[1]
	dw.Data[2] = cot.Data[1] * x.Data[0] * math.Cos(t)
	return out, dx, []tensor.Tensor{dw}
}

func TestBackward_ReconstructsInitialState(t *testing.T) {
	g := NewWithT(t)

	grid := solvers.Linspace(0, 1, 40)
	ode, err := New(sineDecayDyn{}, grid, solvers.NewRK4())
	g.Expect(err).NotTo(HaveOccurred())

	x0 := tensor.FromSlice([]float64{0}, 1)
	final, err := ode.Forward(x0)
	g.Expect(err).NotTo(HaveOccurred())

	// Loss xN^2, so the endpoint cotangent is 2*xN.
	og := final.Scale(2)
	x0rec, dLdx0, dLdW, err := ode.Backward(final, og)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(math.Abs(x0rec.Data[0])).To(BeNumerically("<", 1e-9),
		"reconstructed x0 should return to the origin")
	g.Expect(dLdW).NotTo(BeNil())
	g.Expect(dLdW).To(BeEmpty(), "parameterless dynamics must yield no weight gradients")

	// Central difference of the discrete loss over x0.
	h := 1e-7
	loss := func(v float64) float64 {
		xN, err := ode.Forward(tensor.FromSlice([]float64{v}, 1))
		g.Expect(err).NotTo(HaveOccurred())
		return xN.Data[0] * xN.Data[0]
	}
	fd := (loss(h) - loss(-h)) / (2 * h)
	g.Expect(math.Abs(dLdx0.Data[0]-fd)).To(BeNumerically("<", 1e-8))
}

func TestBackward_ZeroCotangent(t *testing.T) {
	g := NewWithT(t)

	grid := solvers.Linspace(0, 1, 60)
	ode, err := New(doubleSineDecayDyn{}, grid, solvers.NewRK4())
	g.Expect(err).NotTo(HaveOccurred())

	x0 := tensor.FromSlice([]float64{0.1, -0.3}, 2)
	final, err := ode.Forward(x0)
	g.Expect(err).NotTo(HaveOccurred())

	// An empty output gradient integrates a zero adjoint: the backward
	// pass reduces to reconstruction.
	x0rec, dLdx0, _, err := ode.Backward(final, tensor.Tensor{})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(x0rec.MaxDiff(x0)).To(BeNumerically("<", 1e-9))
	g.Expect(dLdx0.Norm()).To(BeZero())
}

func TestBackward_ParameterGradients(t *testing.T) {
	g := NewWithT(t)

	grid := solvers.Linspace(0, 1, 100)
	dyn := newParamDyn()
	ode, err := New(dyn, grid, solvers.NewRK4())
	g.Expect(err).NotTo(HaveOccurred())

	x0 := tensor.FromSlice([]float64{0.35, -0.2}, 2)
	final, err := ode.Forward(x0)
	g.Expect(err).NotTo(HaveOccurred())

	// Loss 0.5*||xN||^2, cotangent xN.
	x0rec, dLdx0, dLdW, err := ode.Backward(final, final)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(dLdW).To(HaveLen(1))
	g.Expect(x0rec.MaxDiff(x0)).To(BeNumerically("<", 1e-10))

	loss := func() float64 {
		xN, err := ode.Forward(x0)
		g.Expect(err).NotTo(HaveOccurred())
		return 0.5 * xN.Dot(xN)
	}
	h := 1e-6

	for i := range x0.Data {
		orig := x0.Data[i]
		x0.Data[i] = orig + h
		lp := loss()
		x0.Data[i] = orig - h
		lm := loss()
		x0.Data[i] = orig
		fd := (lp - lm) / (2 * h)
		g.Expect(math.Abs(dLdx0.Data[i]-fd)).To(BeNumerically("<", 1e-8),
			"dL/dx0[%d]", i)
	}

	for i := range dyn.w.Data {
		orig := dyn.w.Data[i]
		dyn.w.Data[i] = orig + h
		lp := loss()
		dyn.w.Data[i] = orig - h
		lm := loss()
		dyn.w.Data[i] = orig
		fd := (lp - lm) / (2 * h)
		g.Expect(math.Abs(dLdW[0].Data[i]-fd)).To(BeNumerically("<", 1e-8),
			"dL/dW[%d]", i)
	}
}

func TestBackward_MatchesUnrolledTape(t *testing.T) {
	// Differentiate the fully unrolled RK4 solve with the expression
	// tape and compare against the adjoint gradients.
	g := NewWithT(t)

	grid := solvers.Linspace(0, 1, 40)
	ode, err := New(sineDecayDyn{}, grid, solvers.NewRK4())
	g.Expect(err).NotTo(HaveOccurred())

	x0 := tensor.FromSlice([]float64{0.2}, 1)
	final, err := ode.Forward(x0)
	g.Expect(err).NotTo(HaveOccurred())
	_, dLdx0, _, err := ode.Backward(final, final.Scale(2))
	g.Expect(err).NotTo(HaveOccurred())

	f := func(t float64, x *autodiff.Value) *autodiff.Value {
		return x.Neg().Exp().Scale(math.Sin(t))
	}
	leaf := autodiff.Var(x0)
	x := leaf
	for i := 0; i+1 < len(grid); i++ {
		tc, dt := grid[i], grid[i+1]-grid[i]
		k1 := f(tc, x)
		k2 := f(tc+dt*0.5, x.Add(k1.Scale(dt*0.5)))
		k3 := f(tc+dt*0.5, x.Add(k2.Scale(dt*0.5)))
		k4 := f(tc+dt, x.Add(k3.Scale(dt)))
		incr := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
		x = x.Add(incr.Scale(dt / 6))
	}
	g.Expect(math.Abs(x.Data.Data[0]-final.Data[0])).To(BeNumerically("<", 1e-12),
		"unrolled forward should match the solver")

	grads := autodiff.Backward(x, autodiff.Var(x.Data.Scale(2)))
	tapeGrad := autodiff.GradOf(grads, leaf)
	g.Expect(math.Abs(dLdx0.Data[0]-tapeGrad.Data[0])).To(BeNumerically("<", 1e-8),
		"adjoint gradient should agree with the unrolled tape")
}

func TestBackward_RepeatedCallsAgree(t *testing.T) {
	g := NewWithT(t)

	grid := solvers.Linspace(0, 1, 50)
	ode, err := New(newParamDyn(), grid, solvers.NewRK4())
	g.Expect(err).NotTo(HaveOccurred())

	x0 := tensor.FromSlice([]float64{0.35, -0.2}, 2)
	final, err := ode.Forward(x0)
	g.Expect(err).NotTo(HaveOccurred())

	_, g1, w1, err := ode.Backward(final, final)
	g.Expect(err).NotTo(HaveOccurred())
	_, g2, w2, err := ode.Backward(final, final)
	g.Expect(err).NotTo(HaveOccurred())

	// Accumulators are rebuilt per call; nothing carries over.
	g.Expect(g1.MaxDiff(g2)).To(BeZero())
	g.Expect(w1[0].MaxDiff(w2[0])).To(BeZero())
}

func TestBackward_OutputGradShapeMismatch(t *testing.T) {
	g := NewWithT(t)

	ode, err := New(sineDecayDyn{}, solvers.Linspace(0, 1, 10), nil)
	g.Expect(err).NotTo(HaveOccurred())

	final := tensor.FromSlice([]float64{0.5}, 1)
	_, _, _, err = ode.Backward(final, tensor.New(3))
	g.Expect(err).To(MatchError(solvers.ErrShapeMismatch))
}

// brokenVJPDyn claims a parameter pullback it has no parameter for.
type brokenVJPDyn struct{ sineDecayDyn }

func (b brokenVJPDyn) VJP(t float64, x, cot tensor.Tensor) (tensor.Tensor, tensor.Tensor, []tensor.Tensor) {
	out, dx, _ := b.sineDecayDyn.VJP(t, x, cot)
	return out, dx, []tensor.Tensor{tensor.New(2)}
}

func TestBackward_MalformedVJP(t *testing.T) {
	g := NewWithT(t)

	ode, err := New(brokenVJPDyn{}, solvers.Linspace(0, 1, 10), nil)
	g.Expect(err).NotTo(HaveOccurred())

	final := tensor.FromSlice([]float64{0.5}, 1)
	_, _, _, err = ode.Backward(final, final)
	g.Expect(err).To(MatchError(solvers.ErrShapeMismatch))
}
