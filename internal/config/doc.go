// Package config loads, normalizes, and validates sportanalyzer configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPORTANALYZER_BASE_URL. The Config type centralizes every knob the CLI, the
// upload client, the session controller, and the player need, so the analysis
// service location, sampling bounds, and accepted containers are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
