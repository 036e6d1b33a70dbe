package api

import "github.com/gazestack/gazestack/internal/compute"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	SessionCount     int     `json:"session_count"`
	TrackingCount    int     `json:"tracking_count"`
	CalibratingCount int     `json:"calibrating_count"`
	IdleCount        int     `json:"idle_count"`
	AverageLevel     float64 `json:"average_level"`
	AlertCount       int     `json:"alert_count"`
}

// SessionResponse is one session in GET /api/v1/sessions or
// GET /api/v1/sessions/{id}.
type SessionResponse struct {
	SessionID string          `json:"session_id"`
	Label     string          `json:"label,omitempty"`
	CreatedAt string          `json:"created_at"` // RFC3339
	UpdatedAt string          `json:"updated_at,omitempty"`
	Metrics   compute.Metrics `json:"metrics"`
	Trend     []float64       `json:"trend,omitempty"`
}

// SnapshotResponse is the full state pushed to dashboard stream clients.
type SnapshotResponse struct {
	Sessions    []SessionResponse `json:"sessions"`
	GeneratedAt string            `json:"generated_at"` // RFC3339
}

// TuningResponse is the payload for GET /api/v1/tuning and the body returned
// by PUT.
type TuningResponse struct {
	FrameRate          float64 `json:"frame_rate"`
	SmoothingFactor    float64 `json:"smoothing_factor"`
	Sensitivity        float64 `json:"sensitivity"`
	CalibrationFrames  int     `json:"calibration_frames"`
	MaxHistorySize     int     `json:"max_history_size"`
	MinPupilDiameterPx float64 `json:"min_pupil_diameter_px"`
	MaxPupilDiameterPx float64 `json:"max_pupil_diameter_px"`
	StabilityWeight    float64 `json:"stability_weight"`
	FocusWeight        float64 `json:"focus_weight"`
}

// TuningPayload is the partial-update body for PUT /api/v1/tuning. Absent
// fields keep their current values; present ones are clamped on apply.
type TuningPayload struct {
	FrameRate          *float64 `json:"frame_rate,omitempty"`
	SmoothingFactor    *float64 `json:"smoothing_factor,omitempty"`
	Sensitivity        *float64 `json:"sensitivity,omitempty"`
	CalibrationFrames  *int     `json:"calibration_frames,omitempty"`
	MaxHistorySize     *int     `json:"max_history_size,omitempty"`
	MinPupilDiameterPx *float64 `json:"min_pupil_diameter_px,omitempty"`
	MaxPupilDiameterPx *float64 `json:"max_pupil_diameter_px,omitempty"`
	StabilityWeight    *float64 `json:"stability_weight,omitempty"`
	FocusWeight        *float64 `json:"focus_weight,omitempty"`
}

// Apply overlays the payload's present fields onto t and returns the result.
// Clamping happens downstream via Tuning.Normalize.
func (p TuningPayload) Apply(t compute.Tuning) compute.Tuning {
	if p.FrameRate != nil {
		t.FrameRate = *p.FrameRate
	}
	if p.SmoothingFactor != nil {
		t.SmoothingFactor = *p.SmoothingFactor
	}
	if p.Sensitivity != nil {
		t.Sensitivity = *p.Sensitivity
	}
	if p.CalibrationFrames != nil {
		t.CalibrationFrames = *p.CalibrationFrames
	}
	if p.MaxHistorySize != nil {
		t.MaxHistorySize = *p.MaxHistorySize
	}
	if p.MinPupilDiameterPx != nil {
		t.MinPupilDiameter = *p.MinPupilDiameterPx
	}
	if p.MaxPupilDiameterPx != nil {
		t.MaxPupilDiameter = *p.MaxPupilDiameterPx
	}
	if p.StabilityWeight != nil {
		t.StabilityWeight = *p.StabilityWeight
	}
	if p.FocusWeight != nil {
		t.FocusWeight = *p.FocusWeight
	}
	return t
}

// toTuningResponse maps a compute.Tuning to its JSON representation.
func toTuningResponse(t compute.Tuning) TuningResponse {
	return TuningResponse{
		FrameRate:          t.FrameRate,
		SmoothingFactor:    t.SmoothingFactor,
		Sensitivity:        t.Sensitivity,
		CalibrationFrames:  t.CalibrationFrames,
		MaxHistorySize:     t.MaxHistorySize,
		MinPupilDiameterPx: t.MinPupilDiameter,
		MaxPupilDiameterPx: t.MaxPupilDiameter,
		StabilityWeight:    t.StabilityWeight,
		FocusWeight:        t.FocusWeight,
	}
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
