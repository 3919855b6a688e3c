// Package config loads the daemon configuration from a JSON file, applies
// defaults for missing fields, and lets environment variables override the
// credentials so secrets can stay out of the config file.
package config
