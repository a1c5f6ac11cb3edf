// Package config loads, normalizes, and validates stockdesk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and validates the external script locations
// the daemon depends on. The Config type centralizes every knob the daemon and
// CLI need, so report target and staging directories are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
