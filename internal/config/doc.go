// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// MARQUEE_ADMIN_PASSWORD. The Config type centralizes every knob the daemon and
// CLI need: where videos live, where the play-count ledger and database are
// written, the static deck file, and the admin secret.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
