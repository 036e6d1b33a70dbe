// Package landmark derives per-eye geometry from raw face-mesh landmark sets.
//
// The detector (an external face-mesh client) delivers a fixed-layout slice
// of 2-D points in pixel coordinates. With refined landmarks enabled the set
// has 478 points; the last 10 are the iris boundary points the pupil-size
// estimate depends on. Index assignments follow the detector's canonical
// face-mesh topology and are fixed per side in eyeTable.
//
// All functions are pure and fail closed: a slice that is too short, a
// missing iris refinement, or degenerate geometry (zero eye width) yields
// false / 0 rather than an error, since a bad frame is "no detection", not
// a fault.
package landmark
