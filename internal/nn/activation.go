package nn

import "math"

// Sigmoid is the bounded nonlinearity applied at every layer. Outputs
// live in (0, 1) and are remapped to steering commands by the host.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SigmoidPrime is the sigmoid derivative expressed in terms of the
// already-activated output y = Sigmoid(x).
func SigmoidPrime(y float64) float64 {
	return y * (1 - y)
}
