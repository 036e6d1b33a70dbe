// Package ingest accepts detector WebSocket connections at /ws/ingest. Each
// connection owns one session: the detector streams landmark frames and
// lifecycle commands as JSON envelopes and receives the engine's metrics
// after every message.
package ingest
