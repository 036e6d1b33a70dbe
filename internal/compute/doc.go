// Package compute turns per-frame eye geometry into a smoothed 0–100
// concentration level.
//
// score.go provides the pure Score(ScoreInput) function implementing the
// piecewise dilation curve: ratios at or above baseline map to [40,60]
// (capped at a 1.3× ratio), constricted ratios map down to [0,40] (floored
// at 0.7×), and stability/focus terms add tunable weighted contributions.
//
// stats.go provides the windowed dispersion estimators: Variability over the
// last 10 samples and Stability over the last 20, both pure functions of the
// rolling history.
//
// engine.go provides the stateful per-session Tracker: bounded sample
// history, first-N-then-filter baseline calibration, the
// Idle → Calibrating → Tracking state machine, and exponential smoothing of
// the visible level. Smoothing is frame-indexed — the factor is applied once
// per Observe call regardless of wall-clock spacing, so responsiveness
// shifts with the host's real frame rate. That tradeoff is kept because the
// curve's constants are tuned against it; time-scaled smoothing would change
// the scoring behaviour.
package compute
