// Package logs provides file tailing helpers for the CLI.
//
// It reads the daemon log with bounded memory usage, supports "tail last N
// lines", and powers follow-mode updates for `stockdesk logs --follow`.
// Callers supply contexts so background polling shuts down cleanly when the
// CLI exits.
package logs
