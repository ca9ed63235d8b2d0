// Package train fits dynamics parameters so that initial states carried
// through the flow land on given targets. Gradients come from the
// adjoint pass, so memory per update is independent of the grid length.
package train

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/odegrad/internal/neuralode"
	"github.com/san-kum/odegrad/internal/tensor"
)

var (
	ErrNoSamples    = errors.New("train: no samples")
	ErrNoParameters = errors.New("train: dynamics has no trainable parameters")
)

// Sample pairs an initial state with the endpoint it should reach.
type Sample struct {
	X0     tensor.Tensor
	Target tensor.Tensor
}

// Epoch reports one completed pass over the samples.
type Epoch struct {
	Index int
	Loss  float64
}

// Trainer drives an optimizer with endpoint-loss gradients. The
// dynamics parameters are updated in place through the facade.
type Trainer struct {
	ODE *neuralode.NeuralODE
	Opt Optimizer

	// OnEpoch, when set, observes every completed epoch.
	OnEpoch func(Epoch)
}

func New(ode *neuralode.NeuralODE, opt Optimizer) *Trainer {
	return &Trainer{ODE: ode, Opt: opt}
}

// Run fits the parameters for the given number of epochs and returns
// the mean squared endpoint loss per epoch. Cancelling ctx stops
// between epochs and returns the history up to that point alongside
// the context's error.
func (tr *Trainer) Run(ctx context.Context, samples []Sample, epochs int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(tr.ODE.Dynamics().Parameters()) == 0 {
		return nil, ErrNoParameters
	}

	losses := make([]float64, 0, epochs)
	for epoch := 0; epoch < epochs; epoch++ {
		select {
		case <-ctx.Done():
			return losses, ctx.Err()
		default:
		}

		loss, err := tr.RunEpoch(samples)
		if err != nil {
			return losses, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		losses = append(losses, loss)

		if tr.OnEpoch != nil {
			tr.OnEpoch(Epoch{Index: epoch, Loss: loss})
		}
	}
	return losses, nil
}

// RunEpoch performs a single optimizer update over all samples and
// returns the mean squared endpoint loss measured before the update.
func (tr *Trainer) RunEpoch(samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	params := tr.ODE.Dynamics().Parameters()
	if len(params) == 0 {
		return 0, ErrNoParameters
	}

	grads := make([]tensor.Tensor, len(params))
	for i, p := range params {
		grads[i] = tensor.ZerosLike(p)
	}
	loss := 0.0
	for _, s := range samples {
		final, err := tr.ODE.Forward(s.X0)
		if err != nil {
			return 0, err
		}
		diff := final.Sub(s.Target)
		n := float64(diff.Len())
		loss += diff.Dot(diff) / n

		// d(mean squared error)/d(final) = 2*diff/n
		_, _, dW, err := tr.ODE.Backward(final, diff.Scale(2/n))
		if err != nil {
			return 0, err
		}
		for i := range grads {
			grads[i].AddScaledInPlace(1/float64(len(samples)), dW[i])
		}
	}
	loss /= float64(len(samples))
	tr.Opt.Step(params, grads)
	return loss, nil
}
