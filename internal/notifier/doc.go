// Package notifier implements the notification dispatcher: it owns the merged
// configuration (file defaults, constructor arguments, per-call overrides),
// fans a message out to every configured (base URL, destination) pair and
// issues one HTTP request per pair through an injected transport.
package notifier
