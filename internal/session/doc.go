// Package session manages the lifecycle of concurrent tracking sessions.
// Each connected detector gets one Session wrapping a compute.Tracker; the
// Session serializes frame and command delivery so the tracker itself can
// stay single-threaded.
package session
