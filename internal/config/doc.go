// Package config loads, normalizes, and validates Mosaic configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files with unknown keys rejected. The Config type
// centralizes every knob the daemon and CLI need, from the media library root
// to auth accounts and mosaic grid layouts.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
