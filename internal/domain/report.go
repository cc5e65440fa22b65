package domain

import "time"

// Report is the closure artifact for a ticket. At most one per ticket.
type Report struct {
	ID           int64
	TicketID     int64
	Summary      string
	ActionsTaken string
	TechnicianID *int64
	CreatedAt    time.Time
}
