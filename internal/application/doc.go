// Package application implements the ntfy CLI commands on top of the
// notifier and config packages, keeping the main package focused on flag
// parsing and orchestration.
package application
