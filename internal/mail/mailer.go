package mail

import "context"

// Mailer delivers a plain-text message to a set of recipients. Delivery is
// best-effort from the caller's perspective: a failed send must never undo
// the state change that triggered it.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}
