// Package api implements the /api/v1/* REST endpoints for dashboards and
// operators: session listing, lifecycle commands, runtime tuning, alerts,
// and a Prometheus text exposition at /metrics.
package api
