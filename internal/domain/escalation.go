package domain

import "time"

// EscalationRecord is one immutable audit entry per escalation event.
// Records are never updated or deleted after creation.
type EscalationRecord struct {
	ID           int64
	TicketID     int64
	ActorID      int64
	SupervisorID int64
	Comment      string
	CreatedAt    time.Time
}
