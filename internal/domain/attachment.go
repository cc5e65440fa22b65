package domain

import "time"

// Attachment references a stored file attached to a ticket. Attachments have
// no lifecycle of their own; ticket deletion cascades to them.
type Attachment struct {
	ID         int64
	TicketID   int64
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
