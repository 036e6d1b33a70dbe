// Package ws hosts the dashboard stream at /ws/stream: every connected
// client receives the full session snapshot on connect and on a fixed
// broadcast interval thereafter.
package ws
