// Package config loads, normalizes, and validates Podforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY. The Config type centralizes every knob the daemon and CLI
// need, from staging/library directories to voice assignments and schedule
// timing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a validated voice table, and clear validation errors.
package config
