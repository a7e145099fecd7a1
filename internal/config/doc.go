// Package config loads, normalizes, and validates picvoice configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the server and
// CLI need: the per-user storage root, the SQLite database location, the
// HTTP bind address, and the external encoder settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
