package compute

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// quiet returns a ScoreInput with zero variability and full steadiness at
// the given dilation ratio, using the default weights.
func quiet(ratio float64) ScoreInput {
	return ScoreInput{
		DilationRatio:   ratio,
		Variability:     0,
		Stability:       1,
		Sensitivity:     DefaultSensitivity,
		StabilityWeight: DefaultStabilityWeight,
		FocusWeight:     DefaultFocusWeight,
	}
}

func TestScore_DilationCurve(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"at baseline — curve midpoint", 1.0, 40},
		{"moderate dilation", 1.15, 50},
		{"cap ratio", 1.3, 60},
		{"beyond the cap stays capped", 2.0, 60},
		{"mild constriction", 0.85, 20},
		{"floor ratio", 0.7, 0},
		{"beyond the floor stays floored", 0.4, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Score(quiet(tc.ratio))
			if !almostEqual(out.DilationScore, tc.want, 1e-9) {
				t.Errorf("DilationScore(ratio=%.2f) = %.4f, want %.4f",
					tc.ratio, out.DilationScore, tc.want)
			}
		})
	}
}

func TestScore_DilationMonotonic(t *testing.T) {
	// Non-decreasing above baseline up to the cap, non-increasing below it
	// down to the floor.
	prev := math.Inf(-1)
	for ratio := 1.0; ratio <= 1.5; ratio += 0.01 {
		s := Score(quiet(ratio)).DilationScore
		if s < prev {
			t.Fatalf("DilationScore decreased at ratio %.2f: %.4f < %.4f", ratio, s, prev)
		}
		prev = s
	}

	prev = math.Inf(1)
	for ratio := 1.0; ratio >= 0.4; ratio -= 0.01 {
		s := Score(quiet(ratio)).DilationScore
		if s > prev {
			t.Fatalf("DilationScore increased at ratio %.2f: %.4f > %.4f", ratio, s, prev)
		}
		prev = s
	}
}

func TestScore_VariabilityPenalty(t *testing.T) {
	base := quiet(1.0)

	steady := Score(base)
	if !almostEqual(steady.StabilityScore, DefaultStabilityWeight, 1e-9) {
		t.Errorf("zero variability StabilityScore = %.4f, want %.1f",
			steady.StabilityScore, DefaultStabilityWeight)
	}

	jittery := base
	jittery.Variability = 1
	out := Score(jittery)
	if out.StabilityScore != 0 {
		t.Errorf("max variability StabilityScore = %.4f, want 0", out.StabilityScore)
	}
	if out.Raw >= steady.Raw {
		t.Errorf("high variability Raw = %.4f, want strictly below steady %.4f",
			out.Raw, steady.Raw)
	}
}

func TestScore_SensitivityScalesPenalty(t *testing.T) {
	in := quiet(1.0)
	in.Variability = 0.4

	in.Sensitivity = 1.0
	gentle := Score(in).StabilityScore
	in.Sensitivity = 2.0
	harsh := Score(in).StabilityScore

	if harsh >= gentle {
		t.Errorf("sensitivity 2.0 StabilityScore = %.4f, want below sensitivity 1.0 (%.4f)",
			harsh, gentle)
	}

	// Penalty saturates: 0.4 * 5.0 = 2.0, capped at full weight loss.
	in.Sensitivity = 5.0
	if got := Score(in).StabilityScore; got != 0 {
		t.Errorf("saturated penalty StabilityScore = %.4f, want 0", got)
	}
}

func TestScore_FocusTerm(t *testing.T) {
	in := quiet(1.0)
	in.Stability = 0.5
	out := Score(in)
	if !almostEqual(out.FocusScore, 0.5*DefaultFocusWeight, 1e-9) {
		t.Errorf("FocusScore = %.4f, want %.4f", out.FocusScore, 0.5*DefaultFocusWeight)
	}
}

func TestScore_ZeroWeightsDisableTerms(t *testing.T) {
	in := quiet(1.0)
	in.StabilityWeight = 0
	in.FocusWeight = 0

	out := Score(in)
	if out.StabilityScore != 0 || out.FocusScore != 0 {
		t.Errorf("disabled terms = %.4f/%.4f, want 0/0", out.StabilityScore, out.FocusScore)
	}
	// With both terms off, the raw score is the dilation curve alone.
	if !almostEqual(out.Raw, out.DilationScore, 1e-9) {
		t.Errorf("Raw = %.4f, want DilationScore %.4f", out.Raw, out.DilationScore)
	}
}

func TestScore_RawBounded(t *testing.T) {
	// Oversized weights must not push Raw past 100.
	in := quiet(1.3)
	in.StabilityWeight = 50
	in.FocusWeight = 50
	if out := Score(in); out.Raw > 100 {
		t.Errorf("Raw = %.4f, want <= 100", out.Raw)
	}

	// And nothing can push it below 0.
	low := ScoreInput{DilationRatio: 0.4, Variability: 1, Sensitivity: 5}
	if out := Score(low); out.Raw < 0 {
		t.Errorf("Raw = %.4f, want >= 0", out.Raw)
	}
}

func TestScore_ExampleScenario(t *testing.T) {
	// Ratio 1.15 with low variability lands near 70 with default weights.
	in := quiet(1.15)
	out := Score(in)
	if !almostEqual(out.Raw, 70, 1e-9) {
		t.Errorf("Raw = %.4f, want 70", out.Raw)
	}
}

func TestSmooth(t *testing.T) {
	tests := []struct {
		name             string
		current, incoming, factor, want float64
	}{
		{"rise from zero", 0, 70, 0.8, 14},
		{"decay toward zero", 50, 0, 0.8, 40},
		{"steady state", 60, 60, 0.8, 60},
		{"fast factor", 0, 100, 0.1, 90},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Smooth(tc.current, tc.incoming, tc.factor)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("Smooth(%.0f, %.0f, %.2f) = %.4f, want %.4f",
					tc.current, tc.incoming, tc.factor, got, tc.want)
			}
		})
	}
}

func TestSmooth_NeverOvershoots(t *testing.T) {
	// The smoothed value always lands strictly between current and incoming
	// for factors inside (0,1).
	got := Smooth(0, 70, 0.8)
	if got <= 0 || got >= 70 {
		t.Errorf("Smooth(0, 70, 0.8) = %.4f, want strictly inside (0, 70)", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want float64 }{
		{-1, 0, 1, 0},
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
		{150, 0, 100, 100},
	}
	for _, tc := range tests {
		if got := clamp(tc.v, tc.lo, tc.hi); got != tc.want {
			t.Errorf("clamp(%.1f, %.1f, %.1f) = %.1f, want %.1f",
				tc.v, tc.lo, tc.hi, got, tc.want)
		}
	}
}
