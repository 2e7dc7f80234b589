// Package config resolves codescout settings from defaults, an optional
// YAML file, and CODESCOUT_* environment variables, in that order.
package config
