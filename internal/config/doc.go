// Package config defines the format-agnostic group configuration model and
// the Loader interface a format-specific adapter implements. Keeping the
// model free of parser types lets the app and tests work with plain structs
// while the HCL adapter owns all syntax concerns.
package config
