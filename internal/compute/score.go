package compute

import "math"

// Constants of the dilation scoring curve.
//
// A ratio of exactly 1.0 (pupil at baseline) scores dilationMidpoint.
// Moderate dilation earns up to dilationBonus more, saturating at
// 1.0+dilationBand; constriction loses up to the full midpoint, saturating
// at the constrictionFloor ratio.
const (
	dilationMidpoint  = 40.0
	dilationBonus     = 20.0
	dilationBand      = 0.3
	constrictionFloor = 0.7
)

// ScoreInput holds the per-frame values fed into the scoring curve.
type ScoreInput struct {
	// DilationRatio is the current average pupil diameter divided by the
	// calibrated baseline diameter.
	DilationRatio float64

	// Variability is the short-window dispersion of recent samples, in [0,1].
	Variability float64

	// Stability is the longer-window steadiness of recent samples, in [0,1].
	Stability float64

	// Sensitivity scales how hard variability penalises the score.
	Sensitivity float64

	// StabilityWeight is the maximum contribution of the low-variability term.
	StabilityWeight float64

	// FocusWeight is the maximum contribution of the steadiness term.
	FocusWeight float64
}

// ScoreOutput is the raw (pre-smoothing) score with its per-term breakdown.
type ScoreOutput struct {
	// Raw is the combined score clamped to [0,100].
	Raw float64

	// DilationScore is the dilation-curve term: [0,40] below baseline,
	// [40,60] at or above it.
	DilationScore float64

	// StabilityScore is the variability penalty term, in [0,StabilityWeight].
	StabilityScore float64

	// FocusScore is the steadiness bonus term, in [0,FocusWeight].
	FocusScore float64
}

// Score computes the raw concentration score for one valid frame.
//
// The contract: the dilation term is monotonic non-decreasing in the ratio
// above 1.0 up to the 1.3 cap, monotonic non-increasing below 1.0 down to
// the 0.7 floor, and high variability strictly reduces the combined score.
// This is a tuned heuristic, not a physiological model.
func Score(in ScoreInput) ScoreOutput {
	var out ScoreOutput

	if in.DilationRatio >= 1.0 {
		effect := clamp01((in.DilationRatio - 1.0) / dilationBand)
		out.DilationScore = dilationMidpoint + effect*dilationBonus
	} else {
		effect := clamp01((1.0 - math.Max(constrictionFloor, in.DilationRatio)) / dilationBand)
		out.DilationScore = dilationMidpoint - effect*dilationMidpoint
	}

	penalty := math.Min(1, clamp01(in.Variability)*in.Sensitivity)
	out.StabilityScore = (1 - penalty) * in.StabilityWeight
	out.FocusScore = clamp01(in.Stability) * in.FocusWeight

	out.Raw = clamp(out.DilationScore+out.StabilityScore+out.FocusScore, 0, 100)
	return out
}

// Smooth applies one exponential moving-average step: factor is the share of
// the previous value retained, so higher factors react more slowly.
func Smooth(current, incoming, factor float64) float64 {
	return current*factor + incoming*(1-factor)
}

// clamp01 restricts v to the range [0, 1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
