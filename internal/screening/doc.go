// Package screening drives the external screener report script for queued
// analyses. It allocates the per-item work directory, streams script output
// into the log, and records the generated PDF for the organizer.
package screening
