// Package daemon coordinates the long-running stockdesk process and system
// integration points.
//
// It wires configuration, queue storage, the workflow manager, and the HTTP
// API into a single lifecycle with flock-based locking to prevent multiple
// instances. The daemon exposes queue maintenance helpers and serves the web
// submission form alongside the JSON API.
//
// Keep orchestration logic here: individual workflow stages should live in
// their respective packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
