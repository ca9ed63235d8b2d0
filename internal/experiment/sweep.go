package experiment

import (
	"context"
	"sync"
)

// Sweep fans one base config out over solver names and grid densities
// and runs every variant concurrently. Each variant builds its own
// dynamics and facade, so nothing mutable is shared between goroutines;
// all variants draw from the base seed, which keeps learnable models
// identical across the sweep.
type Sweep struct {
	Base      Config
	Solvers   []string
	GridSizes []int
}

// Configs lists the variant configs in sweep order, solvers outer and
// grid sizes inner. Empty dimensions fall back to the base config.
func (s *Sweep) Configs() []Config {
	names := s.Solvers
	if len(names) == 0 {
		names = []string{s.Base.Solver}
	}
	sizes := s.GridSizes
	if len(sizes) == 0 {
		sizes = []int{s.Base.GridPoints}
	}

	cfgs := make([]Config, 0, len(names)*len(sizes))
	for _, name := range names {
		for _, n := range sizes {
			cfg := s.Base
			cfg.Solver = name
			cfg.GridPoints = n
			cfgs = append(cfgs, cfg)
		}
	}
	return cfgs
}

// Run executes every variant and returns results in Configs order.
// The first error encountered wins.
func (s *Sweep) Run(ctx context.Context, reg *Registry) ([]*Result, error) {
	cfgs := s.Configs()
	results := make([]*Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(idx int, cfg Config) {
			defer wg.Done()
			e := New(cfg)
			if err := e.Setup(reg); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = e.Run(ctx)
		}(i, cfg)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
