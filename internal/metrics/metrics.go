// Package metrics provides observers that accumulate scalar summaries
// over the states of a solve.
package metrics

import (
	"math"

	"github.com/san-kum/odegrad/internal/tensor"
)

// Metric accumulates one scalar while states are fed in time order.
type Metric interface {
	Name() string
	Observe(t float64, x tensor.Tensor)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run.
func Defaults() []Metric {
	return []Metric{
		NewEndpointNorm(),
		NewNormDrift(),
		NewPathLength(),
		NewStability(1e6),
	}
}

// EndpointNorm reports the euclidean norm of the last observed state.
type EndpointNorm struct {
	name string
	last float64
}

func NewEndpointNorm() *EndpointNorm {
	return &EndpointNorm{name: "endpoint_norm"}
}

func (e *EndpointNorm) Name() string { return e.name }

func (e *EndpointNorm) Observe(t float64, x tensor.Tensor) {
	e.last = x.Norm()
}

func (e *EndpointNorm) Value() float64 { return e.last }

func (e *EndpointNorm) Reset() { e.last = 0 }

// NormDrift tracks the worst relative departure of the state norm from
// its initial value. Flows with a skew-symmetric jacobian hold it near
// zero, so it doubles as a conservation check.
type NormDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewNormDrift() *NormDrift {
	return &NormDrift{name: "norm_drift"}
}

func (d *NormDrift) Name() string { return d.name }

func (d *NormDrift) Observe(t float64, x tensor.Tensor) {
	norm := x.Norm()
	if d.samples == 0 {
		d.initial = norm
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(norm-d.initial) / d.initial
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *NormDrift) Value() float64 { return d.maxDrift }

func (d *NormDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

// PathLength sums the state-space distance between consecutive
// samples, a grid-resolution proxy for arc length.
type PathLength struct {
	name   string
	prev   tensor.Tensor
	length float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(t float64, x tensor.Tensor) {
	if !p.prev.IsEmpty() && p.prev.SameShape(x) {
		p.length += x.Sub(p.prev).Norm()
	}
	p.prev = x
}

func (p *PathLength) Value() float64 { return p.length }

func (p *PathLength) Reset() {
	p.prev = tensor.Tensor{}
	p.length = 0
}

// Stability reports the fraction of samples whose entries all stay
// inside +-threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{name: "stability", threshold: threshold}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(t float64, x tensor.Tensor) {
	s.samples++
	for _, v := range x.Data {
		if math.Abs(v) > s.threshold || math.IsNaN(v) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
