// Package store holds the latest metrics snapshot per tracking session.
//
// Entries are keyed by session ID and carry a short trend ring of recent
// concentration levels for the dashboard. A background goroutine (Run)
// periodically evicts entries whose session has gone quiet for longer than
// the configured TTL.
package store
