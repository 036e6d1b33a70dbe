package compute

import "testing"

// repeat returns a slice with v repeated n times.
func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// alternate returns n samples alternating between a and b.
func alternate(a, b float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = a
		} else {
			out[i] = b
		}
	}
	return out
}

func TestVariability(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		want    float64
	}{
		{"empty history", nil, 0},
		{"below the window", repeat(4, 9), 0},
		{"identical samples", repeat(4, 10), 0},
		{"identical with long history", repeat(4, 50), 0},
		// Alternating 4/6: mean 5, population stddev 1 → CV 0.2.
		{"alternating samples", alternate(4, 6, 10), 0.2},
		{"high dispersion", alternate(1, 99, 10), 0.98},
		// Nine 1s and one 91: mean 10, stddev 27 → CV 2.7, capped at 1.
		{"extreme dispersion capped", append(repeat(1, 9), 91), 1},
		{"zero mean yields zero", repeat(0, 10), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Variability(tc.history)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("Variability = %.4f, want %.4f", got, tc.want)
			}
		})
	}
}

func TestVariability_UsesOnlyLastWindow(t *testing.T) {
	// Old turbulence followed by ten identical samples reads as calm.
	history := append(alternate(1, 9, 30), repeat(5, 10)...)
	if got := Variability(history); got != 0 {
		t.Errorf("Variability with calm tail = %.4f, want 0", got)
	}
}

func TestStability(t *testing.T) {
	tests := []struct {
		name    string
		history []float64
		want    float64
	}{
		{"empty history", nil, 0},
		{"below the window", repeat(4, 19), 0},
		{"perfectly steady", repeat(4, 20), 1},
		// Alternating 4/6 over 20: CV 0.2 → stability 0.8.
		{"mild jitter", alternate(4, 6, 20), 0.8},
		{"zero mean yields zero", repeat(0, 20), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Stability(tc.history)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("Stability = %.4f, want %.4f", got, tc.want)
			}
		})
	}
}

func TestStability_Bounded(t *testing.T) {
	// Even absurd dispersion never pushes stability below 0.
	history := alternate(0.1, 200, 20)
	got := Stability(history)
	if got < 0 || got > 1 {
		t.Errorf("Stability = %.4f, want within [0,1]", got)
	}
}
