// Package config loads and validates keel configuration from TOML with
// environment overrides for credentials.
package config
