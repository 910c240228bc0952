// Package config handles configuration loading, parsing, and validation
// from various sources (dotenv file, config file, environment variables).
// It provides type-safe access to the WebUI endpoint, the models directory,
// batch file locations and logging settings, so that no other package reads
// the environment directly.
package config
