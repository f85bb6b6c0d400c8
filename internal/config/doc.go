// Package config loads, normalizes, and validates midibot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MIDIBOT_DATA_DIR. Every catalog path (songs file, attachment directory,
// export directory, logs, journal) derives from the data directory unless set
// explicitly, so pointing one knob at a new location moves the whole catalog.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
