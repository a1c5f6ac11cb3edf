// Package download drives the external historical data script for queued
// analyses, capturing its output log and recording the downloaded CSV for
// the organizer.
package download
