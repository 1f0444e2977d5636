// Package activation holds the scalar nonlinearities used by the reference cell.
package activation

import "math"

// Sigmoid computes the logistic function 1/(1+e^-x).
// Only the exponential of a non-positive argument is ever evaluated, so the
// result stays finite for large |x|.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		z := math.Exp(-x)
		return 1.0 / (1.0 + z)
	}
	z := math.Exp(x)
	return z / (1.0 + z)
}

// Tanh computes the hyperbolic tangent.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}
