package landmark

import "math"

// RefinedCount is the landmark count produced by the detector when refined
// (iris) landmarks are enabled. Iris indices only exist at or above this
// count; shorter sets still carry the eyelid points.
const RefinedCount = 478

// opennessThreshold is the empirical eyelid aspect ratio above which an eye
// is considered open.
const opennessThreshold = 0.1

// Point is one detected landmark in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Side selects which eye an extraction applies to.
type Side int

const (
	LeftEye Side = iota
	RightEye
)

// String returns "left" or "right" for logging and wire payloads.
func (s Side) String() string {
	if s == LeftEye {
		return "left"
	}
	return "right"
}

// eyeIndices holds the fixed landmark indices for one eye.
type eyeIndices struct {
	cornerA, cornerB    int // eyelid corners (horizontal reference)
	lidTop, lidBottom   int // eyelid top / bottom (vertical opening)
	irisTop, irisBot    int // iris boundary, vertical pair
	irisLeft, irisRight int // iris boundary, horizontal pair
}

// eyeTable maps each side to its canonical face-mesh indices. "Left" and
// "right" are the subject's left and right, matching the detector's labels.
var eyeTable = [2]eyeIndices{
	LeftEye: {
		cornerA: 362, cornerB: 263,
		lidTop: 386, lidBottom: 374,
		irisTop: 475, irisBot: 477,
		irisLeft: 476, irisRight: 474,
	},
	RightEye: {
		cornerA: 33, cornerB: 133,
		lidTop: 159, lidBottom: 145,
		irisTop: 470, irisBot: 472,
		irisLeft: 471, irisRight: 469,
	},
}

// Openness returns the eyelid aspect ratio (vertical opening over eye width)
// for the given side. Returns 0 if the slice is missing any required index
// or the eye width is zero.
func Openness(points []Point, side Side) float64 {
	idx := eyeTable[side]
	if !has(points, idx.cornerA, idx.cornerB, idx.lidTop, idx.lidBottom) {
		return 0
	}
	horizontal := dist(points[idx.cornerA], points[idx.cornerB])
	if horizontal == 0 {
		return 0
	}
	vertical := dist(points[idx.lidTop], points[idx.lidBottom])
	return vertical / horizontal
}

// EyeOpen reports whether the eye on the given side is open. It fails closed:
// missing landmarks or degenerate geometry count as closed.
func EyeOpen(points []Point, side Side) bool {
	return Openness(points, side) > opennessThreshold
}

// PupilDiameter estimates the iris diameter in pixels as the mean of the
// vertical and horizontal iris-boundary distances. Returns 0 when the
// refined iris landmarks are absent.
//
// Pixel units are deliberate: the concentration model only consumes the
// ratio of this value to a baseline learned in the same units, so absolute
// (mm) calibration is unnecessary.
func PupilDiameter(points []Point, side Side) float64 {
	if len(points) < RefinedCount {
		return 0
	}
	idx := eyeTable[side]
	vertical := dist(points[idx.irisTop], points[idx.irisBot])
	horizontal := dist(points[idx.irisLeft], points[idx.irisRight])
	return (vertical + horizontal) / 2
}

// has reports whether every index is in range for points.
func has(points []Point, indices ...int) bool {
	for _, i := range indices {
		if i >= len(points) {
			return false
		}
	}
	return true
}

// dist returns the Euclidean distance between two points.
func dist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
