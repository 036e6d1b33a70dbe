// Package alerts evaluates threshold rules against session metrics and
// delivers webhook notifications when rules fire or resolve.
package alerts
