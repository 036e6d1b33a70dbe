package compute

import (
	"log/slog"

	"github.com/gazestack/gazestack/internal/landmark"
)

// Session states. A session starts Idle, calibrates after Start, and tracks
// once a baseline is learned. Recalibrate returns to Calibrating; Stop
// returns to Idle and discards all learned state.
const (
	StateIdle        = "idle"
	StateCalibrating = "calibrating"
	StateTracking    = "tracking"
)

// Metrics is the externally visible output after each Observe call.
type Metrics struct {
	State               string  `json:"state"`
	ConcentrationLevel  float64 `json:"concentration_level"`
	IsCalibrated        bool    `json:"is_calibrated"`
	CalibrationProgress float64 `json:"calibration_progress"`
	BaselineDiameter    float64 `json:"baseline_diameter_px"`
	DilationRatio       float64 `json:"dilation_ratio"`
	Variability         float64 `json:"variability"`
	Stability           float64 `json:"stability"`
	LeftPupilPx         float64 `json:"left_pupil_px"`
	RightPupilPx        float64 `json:"right_pupil_px"`
}

// Tracker is the per-session calibration and scoring engine. It is invoked
// once per incoming frame and owns the only mutable state of a session.
//
// Tracker is NOT safe for concurrent use: the engine is frame-synchronous by
// design and hosts must serialize calls (the session manager does). Every
// call counts as exactly one frame regardless of wall-clock spacing — pacing
// to Tuning.FrameRate is the calling loop's job.
type Tracker struct {
	tuning Tuning

	state      string
	history    []float64
	baseline   float64
	calibrated bool
	attempted  bool // calibration window was filled and judged once
	level      float64

	last Metrics
}

// NewTracker returns an Idle tracker with the given (normalized) tuning.
func NewTracker(t Tuning) *Tracker {
	tr := &Tracker{tuning: t.Normalize(), state: StateIdle}
	tr.last = tr.snapshot(0, 0)
	return tr
}

// Start moves the tracker into Calibrating, discarding any previous state.
func (tr *Tracker) Start() {
	tr.reset()
	tr.state = StateCalibrating
	tr.last = tr.snapshot(0, 0)
}

// Stop returns the tracker to Idle and discards history, baseline, and level.
func (tr *Tracker) Stop() {
	tr.reset()
	tr.state = StateIdle
	tr.last = tr.snapshot(0, 0)
}

// Recalibrate discards the learned baseline and history and re-enters
// Calibrating. Tuning is kept.
func (tr *Tracker) Recalibrate() {
	tr.reset()
	tr.state = StateCalibrating
	tr.last = tr.snapshot(0, 0)
}

// SetTuning applies new tuning after clamping. Takes effect on the next
// frame; history and baseline are kept.
func (tr *Tracker) SetTuning(t Tuning) {
	tr.tuning = t.Normalize()
}

// Tuning returns the active (normalized) tuning.
func (tr *Tracker) Tuning() Tuning {
	return tr.tuning
}

// Metrics returns the output of the most recent state change or Observe call.
func (tr *Tracker) Metrics() Metrics {
	return tr.last
}

// Observe ingests one frame of landmarks and returns the updated metrics.
//
// A frame is valid when both eyes are open and the averaged iris diameter
// falls inside the configured pupil bounds. Invalid frames — a closed eye on
// either side included — never touch the history or baseline; they only
// decay the visible level toward zero through the same smoothing step, so
// the output never jumps.
func (tr *Tracker) Observe(points []landmark.Point) Metrics {
	if tr.state == StateIdle {
		// Frames arriving before Start carry no meaning.
		return tr.last
	}

	leftOpen := landmark.EyeOpen(points, landmark.LeftEye)
	rightOpen := landmark.EyeOpen(points, landmark.RightEye)
	leftPx := landmark.PupilDiameter(points, landmark.LeftEye)
	rightPx := landmark.PupilDiameter(points, landmark.RightEye)

	avg := (leftPx + rightPx) / 2
	if !leftOpen || !rightOpen ||
		avg <= 0 || avg < tr.tuning.MinPupilDiameter || avg > tr.tuning.MaxPupilDiameter {
		tr.level = Smooth(tr.level, 0, tr.tuning.SmoothingFactor)
		tr.last = tr.snapshot(leftPx, rightPx)
		return tr.last
	}

	wasCalibrated := tr.calibrated
	tr.push(avg)
	if !tr.calibrated {
		tr.tryCalibrate()
	}

	if !wasCalibrated {
		// Still calibrating, or calibration completed on this very frame:
		// no baseline existed when the frame arrived, so the level decays.
		tr.level = Smooth(tr.level, 0, tr.tuning.SmoothingFactor)
		tr.last = tr.snapshot(leftPx, rightPx)
		return tr.last
	}

	out := Score(ScoreInput{
		DilationRatio:   avg / tr.baseline,
		Variability:     Variability(tr.history),
		Stability:       Stability(tr.history),
		Sensitivity:     tr.tuning.Sensitivity,
		StabilityWeight: tr.tuning.StabilityWeight,
		FocusWeight:     tr.tuning.FocusWeight,
	})
	tr.level = Smooth(tr.level, out.Raw, tr.tuning.SmoothingFactor)
	tr.last = tr.snapshot(leftPx, rightPx)
	return tr.last
}

// push appends a valid sample, evicting the oldest past MaxHistorySize.
func (tr *Tracker) push(sample float64) {
	tr.history = append(tr.history, sample)
	if over := len(tr.history) - tr.tuning.MaxHistorySize; over > 0 {
		tr.history = tr.history[over:]
	}
}

// tryCalibrate attempts baseline learning exactly once, when the window
// first fills: the first CalibrationFrames samples are filtered to the
// configured bounds, and the baseline is their mean if at least half
// survive. A window where fewer than half survive (possible when bounds are
// tightened mid-window) leaves the session silently uncalibrated until
// Recalibrate — the attempt is latched so history eviction can never slide
// a fresh window into place on its own.
func (tr *Tracker) tryCalibrate() {
	if tr.attempted {
		return
	}
	frames := tr.tuning.CalibrationFrames
	if len(tr.history) < frames {
		return
	}
	tr.attempted = true

	var sum float64
	var kept int
	for _, v := range tr.history[:frames] {
		if v >= tr.tuning.MinPupilDiameter && v <= tr.tuning.MaxPupilDiameter {
			sum += v
			kept++
		}
	}
	if kept*2 < frames {
		return
	}

	tr.baseline = sum / float64(kept)
	tr.calibrated = true
	tr.state = StateTracking
	slog.Debug("compute: baseline calibrated",
		"baseline_px", tr.baseline, "samples", kept)
}

// reset returns all learned state to its initial form. Tuning survives.
func (tr *Tracker) reset() {
	tr.history = nil
	tr.baseline = 0
	tr.calibrated = false
	tr.attempted = false
	tr.level = 0
}

// snapshot assembles the Metrics view of the current state.
func (tr *Tracker) snapshot(leftPx, rightPx float64) Metrics {
	m := Metrics{
		State:              tr.state,
		ConcentrationLevel: tr.level,
		IsCalibrated:       tr.calibrated,
		BaselineDiameter:   tr.baseline,
		Variability:        Variability(tr.history),
		Stability:          Stability(tr.history),
		LeftPupilPx:        leftPx,
		RightPupilPx:       rightPx,
	}
	if tr.calibrated {
		m.CalibrationProgress = 100
		if last := lastSample(tr.history); last > 0 && tr.baseline > 0 {
			m.DilationRatio = last / tr.baseline
		}
	} else {
		progress := float64(len(tr.history)) / float64(tr.tuning.CalibrationFrames) * 100
		m.CalibrationProgress = clamp(progress, 0, 100)
	}
	return m
}

// lastSample returns the newest history sample, or 0 when empty.
func lastSample(history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1]
}
