package notifier

import "errors"

var (
	// ErrNoTargets is returned when, after all merges, neither topics nor
	// emails are configured and no topic could be generated.
	ErrNoTargets = errors.New("at least one topic or email must be configured")
	// ErrConflict is returned when a single call carries both an inline
	// message and a file attachment.
	ErrConflict = errors.New("cannot send both a message and an attachment")
)
