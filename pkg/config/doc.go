// Package config loads Renova's configuration from RENOVA_* environment
// variables with sane defaults, validating invariants at startup.
package config
