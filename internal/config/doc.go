// Package config loads, normalizes, and validates audiodupes configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUDIODUPES_FPCALC. The Config type centralizes the matching thresholds,
// external tool locations, fingerprint cache, output, and logging settings so
// the CLI discovers everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical enum values, and clear validation errors.
package config
