package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/odegrad/internal/models"
	"github.com/san-kum/odegrad/internal/neuralode"
	"github.com/san-kum/odegrad/internal/tensor"
)

type modelEntry struct {
	build func(rng *rand.Rand) neuralode.Dynamics
	state func(rng *rand.Rand) tensor.Tensor
}

// Registry maps model names to constructors and to a default initial
// state shaped for that model.
type Registry struct {
	models map[string]modelEntry
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]modelEntry)}

	r.models["sine-decay"] = modelEntry{
		build: func(*rand.Rand) neuralode.Dynamics { return models.NewSineDecay() },
		state: func(*rand.Rand) tensor.Tensor { return tensor.Zeros(1) },
	}
	r.models["double-sine-decay"] = modelEntry{
		build: func(*rand.Rand) neuralode.Dynamics { return models.NewDoubleSineDecay() },
		state: func(*rand.Rand) tensor.Tensor { return tensor.Zeros(2) },
	}
	r.models["coswave"] = modelEntry{
		build: func(*rand.Rand) neuralode.Dynamics { return models.NewCosWave() },
		state: func(*rand.Rand) tensor.Tensor { return tensor.FromSlice([]float64{1}, 1) },
	}
	r.models["coswave-grad"] = modelEntry{
		build: func(*rand.Rand) neuralode.Dynamics { return models.NewCosWaveGrad() },
		state: func(*rand.Rand) tensor.Tensor { return tensor.FromSlice([]float64{1}, 1) },
	}
	r.models["dense"] = modelEntry{
		build: func(rng *rand.Rand) neuralode.Dynamics { return models.NewDenseNet(3, rng) },
		state: func(rng *rand.Rand) tensor.Tensor { return tensor.Randn(rng, 1, 12, 3) },
	}
	r.models["gradpath"] = modelEntry{
		build: func(rng *rand.Rand) neuralode.Dynamics { return models.NewGradPathNet(3, rng) },
		state: func(rng *rand.Rand) tensor.Tensor { return tensor.Randn(rng, 1, 12, 6) },
	}
	r.models["linear"] = modelEntry{
		build: func(rng *rand.Rand) neuralode.Dynamics { return models.NewLinearSystem(2, rng) },
		state: func(*rand.Rand) tensor.Tensor { return tensor.FromSlice([]float64{1, 1}, 2) },
	}

	return r
}

// GetModel builds a fresh dynamics instance. Learnable models draw
// their initial weights from rng.
func (r *Registry) GetModel(name string, rng *rand.Rand) (neuralode.Dynamics, error) {
	e, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return e.build(rng), nil
}

// DefaultState returns the initial state a model expects when the
// caller supplies none.
func (r *Registry) DefaultState(name string, rng *rand.Rand) (tensor.Tensor, error) {
	e, ok := r.models[name]
	if !ok {
		return tensor.Tensor{}, fmt.Errorf("unknown model: %s", name)
	}
	return e.state(rng), nil
}

// ListModels returns the registered names sorted.
func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
