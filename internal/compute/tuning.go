package compute

// Default tuning values. Pupil bounds are in the detector's pixel units and
// bracket the plausible iris sizes seen at typical webcam distances.
const (
	DefaultFrameRate         = 30.0
	DefaultSmoothingFactor   = 0.8
	DefaultSensitivity       = 1.0
	DefaultCalibrationFrames = 30
	DefaultMaxHistorySize    = 120
	DefaultMinPupilDiameter  = 2.0
	DefaultMaxPupilDiameter  = 8.0
	DefaultStabilityWeight   = 15.0
	DefaultFocusWeight       = 5.0
)

// Clamping bounds for the runtime-adjustable knobs. Out-of-range values are
// pulled into range rather than rejected, so a bad live update can degrade
// responsiveness but never break the engine.
const (
	minSensitivity = 0.1
	maxSensitivity = 5.0
	minSmoothing   = 0.05
	maxSmoothing   = 0.95
	minFrameRate   = 5.0
	maxFrameRate   = 60.0
	maxTermWeight  = 50.0
)

// Tuning holds every runtime-adjustable parameter of the tracker.
type Tuning struct {
	// FrameRate is the frame rate the host loop is expected to gate to.
	// The engine itself is frame-indexed; this is published so callers can
	// derive the pacing interval (1000/FrameRate ms).
	FrameRate float64

	// SmoothingFactor is the EMA weight retained from the previous level
	// each frame, in (0,1). Higher values react more slowly.
	SmoothingFactor float64

	// Sensitivity scales the variability penalty in the score.
	Sensitivity float64

	// CalibrationFrames is the number of valid samples collected before the
	// baseline is learned.
	CalibrationFrames int

	// MaxHistorySize bounds the rolling sample history. Always at least
	// CalibrationFrames.
	MaxHistorySize int

	// MinPupilDiameter / MaxPupilDiameter bound valid samples, in pixels.
	MinPupilDiameter float64
	MaxPupilDiameter float64

	// StabilityWeight and FocusWeight set the maximum contributions of the
	// two stability terms in the score.
	StabilityWeight float64
	FocusWeight     float64
}

// DefaultTuning returns the tuned defaults.
func DefaultTuning() Tuning {
	return Tuning{
		FrameRate:         DefaultFrameRate,
		SmoothingFactor:   DefaultSmoothingFactor,
		Sensitivity:       DefaultSensitivity,
		CalibrationFrames: DefaultCalibrationFrames,
		MaxHistorySize:    DefaultMaxHistorySize,
		MinPupilDiameter:  DefaultMinPupilDiameter,
		MaxPupilDiameter:  DefaultMaxPupilDiameter,
		StabilityWeight:   DefaultStabilityWeight,
		FocusWeight:       DefaultFocusWeight,
	}
}

// Normalize clamps every field into its operating range and returns the
// result. Zero values fall back to defaults for the knobs whose valid range
// excludes zero, so a partially-populated Tuning is safe to apply; the score
// weights keep a configured zero, which disables their term.
func (t Tuning) Normalize() Tuning {
	if t.FrameRate == 0 {
		t.FrameRate = DefaultFrameRate
	}
	t.FrameRate = clamp(t.FrameRate, minFrameRate, maxFrameRate)

	if t.SmoothingFactor == 0 {
		t.SmoothingFactor = DefaultSmoothingFactor
	}
	t.SmoothingFactor = clamp(t.SmoothingFactor, minSmoothing, maxSmoothing)

	if t.Sensitivity == 0 {
		t.Sensitivity = DefaultSensitivity
	}
	t.Sensitivity = clamp(t.Sensitivity, minSensitivity, maxSensitivity)

	if t.CalibrationFrames < 1 {
		t.CalibrationFrames = DefaultCalibrationFrames
	}
	if t.MaxHistorySize < t.CalibrationFrames {
		t.MaxHistorySize = t.CalibrationFrames
	}

	if t.MinPupilDiameter <= 0 {
		t.MinPupilDiameter = DefaultMinPupilDiameter
	}
	if t.MaxPupilDiameter <= t.MinPupilDiameter {
		t.MaxPupilDiameter = DefaultMaxPupilDiameter
	}
	if t.MaxPupilDiameter <= t.MinPupilDiameter {
		// Defaults can still collide with an extreme configured minimum.
		t.MaxPupilDiameter = t.MinPupilDiameter * 2
	}

	// Zero is a valid weight (it disables the term), so the weights are
	// clamped but never defaulted here; defaults come from DefaultTuning
	// and the config layer.
	t.StabilityWeight = clamp(t.StabilityWeight, 0, maxTermWeight)
	t.FocusWeight = clamp(t.FocusWeight, 0, maxTermWeight)

	return t
}
