// Package config loads, normalizes, and validates ytqa configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GROQ_API_KEY. The Config type centralizes every knob the shell, the web
// surface, and the one-shot commands need, so session directories and external
// service credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
