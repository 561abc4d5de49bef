// Package config loads, normalizes, and validates echosurvey configuration.
//
// It supplies repository defaults (directory names, tool executables, map
// regions, plotting parameters), expands user paths, reads TOML files, and
// honours environment overrides such as ECHOSURVEY_INSPECT_BIN, optionally
// sourced from a .env file in the working directory.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors.
package config
