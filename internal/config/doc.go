// Package config loads, normalizes, and validates reelpress configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and centralizes every knob the CLI and the
// writing engine need: output and work directories, package metadata, video
// and audio parameters, encoder parallelism, and log routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical values, and clear validation errors.
package config
