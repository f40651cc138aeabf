// Package config loads and persists the notifier's INI configuration file:
// target identifiers (topics, emails, base URLs) plus allow-listed message
// defaults. It exposes strongly typed settings to the rest of the application
// and guarantees that a written file loads back to the same configuration.
package config
