// Package config loads dispatch configuration from YAML files and the
// environment.
//
// A config file is resolved from an explicit path or standard locations,
// .env files are loaded when present, and environment variables prefixed
// with DISPATCH_ override file values. Loaded configuration is defaulted
// and validated before use.
package config
