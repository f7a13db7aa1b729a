// Package stats provides the smoothing filters used on daily count series.
//
// # Gaussian Filter
//
// GaussianFilter1D convolves a sequence with a normalized Gaussian kernel
// truncated at DefaultTruncate standard deviations. The ends are padded
// according to a BoundaryMode:
//
//	smoothed, err := stats.GaussianFilter1D(values, 3, stats.Reflect)
//
// The output has the same length as the input. A sigma small enough that
// the kernel radius rounds to zero returns the input unchanged.
package stats
