package compute

import "math"

// Window sizes for the dispersion estimators. Variability reacts fast to
// jitter; Stability needs a longer run of samples before it gives credit.
const (
	variabilityWindow = 10
	stabilityWindow   = 20
)

// Variability returns the normalised dispersion (coefficient of variation,
// capped at 1) of the last variabilityWindow samples. Returns 0 when fewer
// samples are available or the window mean is zero.
func Variability(history []float64) float64 {
	mean, stddev, ok := windowStats(history, variabilityWindow)
	if !ok {
		return 0
	}
	return math.Min(1, stddev/mean)
}

// Stability returns the inverse dispersion of the last stabilityWindow
// samples, in [0,1]: 1 means a perfectly steady signal. Returns 0 when fewer
// samples are available or the window mean is zero.
func Stability(history []float64) float64 {
	mean, stddev, ok := windowStats(history, stabilityWindow)
	if !ok {
		return 0
	}
	return math.Min(1, math.Max(0, 1-stddev/mean))
}

// windowStats computes the mean and population standard deviation of the
// last size samples. ok is false when history is shorter than size or the
// mean is zero (dispersion ratios would be undefined).
func windowStats(history []float64, size int) (mean, stddev float64, ok bool) {
	if len(history) < size {
		return 0, 0, false
	}
	window := history[len(history)-size:]

	var sum float64
	for _, v := range window {
		sum += v
	}
	mean = sum / float64(size)
	if mean == 0 {
		return 0, 0, false
	}

	var variance float64
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(size)

	return mean, math.Sqrt(variance), true
}
