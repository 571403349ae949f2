// Package config defines the application configuration structure and the
// loading logic that populates it from config files and environment
// variables. Environment variables (THINKEX_ prefix) take precedence over
// file values; the loaded configuration is validated before use.
package config
