// Package config loads, normalizes, and validates voiceregen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VOICEREGEN_NAME and HF_TOKEN. The Config type centralizes every directory,
// filter token, and external tool setting the four pipeline stages need so no
// stage reads module-level constants.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
