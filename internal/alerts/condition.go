package alerts

import (
	"strconv"
	"strings"

	"github.com/gazestack/gazestack/internal/compute"
)

// evalCondition evaluates a rule condition string against session metrics.
//
// Supported expressions (field operator value):
//
//	concentration_level < 30
//	calibration_progress < 100
//	dilation_ratio > 1.3
//	variability > 0.5
//	stability < 0.2
//	baseline_px < 2.5
//	state == calibrating
//	state != tracking
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, m compute.Metrics) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "state" {
		switch op {
		case "==":
			return m.State == rhs, 0
		case "!=":
			return m.State != rhs, 0
		}
		return false, 0
	}

	v, ok := numericField(field, m)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the metrics.
func numericField(field string, m compute.Metrics) (float64, bool) {
	switch field {
	case "concentration_level":
		return m.ConcentrationLevel, true
	case "calibration_progress":
		return m.CalibrationProgress, true
	case "dilation_ratio":
		return m.DilationRatio, true
	case "variability":
		return m.Variability, true
	case "stability":
		return m.Stability, true
	case "baseline_px":
		return m.BaselineDiameter, true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
