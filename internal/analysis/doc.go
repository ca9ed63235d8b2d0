// Package analysis measures empirical solver behavior on top of the
// forward pass.
//
//   - [ConvergenceStudy]: endpoint error across grid densities for one stepper
//   - [CompareSteppers]: the same study across several steppers at once
//   - [ReferenceEndpoint]: fine-grid endpoint to measure against
//   - [PowerSpectrum], [DominantFrequency]: frequency content of a trajectory
//
// # Observed order
//
// A fixed-step method of order p shrinks its endpoint error like h^p.
// The study exposes p two ways:
//
//	study, _ := analysis.ConvergenceStudy(dyn, "rk4", 0, 1, x0, []int{25, 50, 100}, ref)
//	study.Ratios()         // per-doubling error ratios, near 2^p
//	study.EstimatedOrder() // least-squares slope of log(err) against log(h)
package analysis
