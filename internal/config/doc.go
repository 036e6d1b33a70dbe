// Package config loads and watches the server configuration file.
//
// Top-level types:
//   - Config{Server, Engine, Alerts} — full config tree parsed from YAML
//   - ServerConfig — http_port, snapshot_ttl, broadcast_interval, auth
//   - EngineConfig — every runtime-adjustable tracker knob (frame_rate,
//     smoothing_factor, sensitivity, calibration window, pupil bounds,
//     score weights); Tuning() converts it to a clamped compute.Tuning
//   - AlertsConfig — threshold rules plus webhook delivery targets, with
//     webhook URLs resolved from environment variables
//
// Load(path) reads the YAML file, applies defaults, then validates
// structural fields. Engine values are not rejected — they are clamped into
// their operating ranges by compute.Tuning.Normalize, so a sloppy edit can
// never take the tracker down.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config; this is how live tuning updates
// reach running sessions. Atomic-save editors replace the inode, so the
// watch is re-added after each reload.
package config
