// Package tensor provides the dense float64 array type shared by the
// solvers, the adjoint machinery, and the model zoo.
//
// A [Tensor] is a contiguous row-major buffer plus a shape. Operations
// are non-mutating value transforms unless the name says otherwise
// ([Tensor.AddScaledInPlace]); arguments are never aliased into results.
//
//   - [New], [FromSlice], [Zeros], [ZerosLike]: construction
//   - [Tensor.Add], [Tensor.Sub], [Tensor.Scale], [Tensor.AddScaled]: arithmetic
//   - [Tensor.IsValid]: NaN/Inf scan for divergence checks
//
// Shape mismatches on binary operations panic. Callers that accept
// external input validate shapes with [Tensor.SameShape] first and
// surface an error instead.
package tensor
