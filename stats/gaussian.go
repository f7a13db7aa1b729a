package stats

import (
	"errors"
	"math"
)

// BoundaryMode selects how samples beyond either end of the input are
// filled during convolution.
type BoundaryMode int

const (
	// Reflect mirrors about the outer edge: d c b a | a b c d | d c b a.
	Reflect BoundaryMode = iota
	// Nearest repeats the edge sample: a a a a | a b c d | d d d d.
	Nearest
	// Constant pads with zeros: 0 0 0 0 | a b c d | 0 0 0 0.
	Constant
)

// DefaultTruncate is the kernel half-width in standard deviations.
const DefaultTruncate = 4.0

// GaussianKernel returns normalized Gaussian weights for the given sigma,
// with radius int(truncate*sigma + 0.5). The kernel has odd length and
// sums to one.
func GaussianKernel(sigma, truncate float64) []float64 {
	radius := int(truncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	if radius == 0 {
		kernel[0] = 1
		return kernel
	}

	sum := 0.0
	for i := -radius; i <= radius; i++ {
		w := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianFilter1D convolves values with a Gaussian kernel of width sigma.
// The output has the same length as the input. Samples past the ends are
// supplied by mode.
func GaussianFilter1D(values []float64, sigma float64, mode BoundaryMode) ([]float64, error) {
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, errors.New("sigma must be a positive finite number")
	}

	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out, nil
	}

	kernel := GaussianKernel(sigma, DefaultTruncate)
	radius := len(kernel) / 2

	for i := 0; i < n; i++ {
		sum := 0.0
		for k := -radius; k <= radius; k++ {
			j, ok := boundaryIndex(i+k, n, mode)
			if !ok {
				continue
			}
			sum += kernel[k+radius] * values[j]
		}
		out[i] = sum
	}
	return out, nil
}

// boundaryIndex maps an index that may lie outside [0, n) back into it.
// ok is false when the sample is padding.
func boundaryIndex(i, n int, mode BoundaryMode) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch mode {
	case Nearest:
		if i < 0 {
			return 0, true
		}
		return n - 1, true
	case Constant:
		return 0, false
	default:
		// Half-sample symmetric reflection has period 2n.
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i, true
	}
}
