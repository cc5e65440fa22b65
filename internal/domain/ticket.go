package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending              TicketStatus = "PENDING"
	TicketStatusInProgress           TicketStatus = "IN_PROGRESS"
	TicketStatusEscalated            TicketStatus = "ESCALATED"
	TicketStatusAwaitingConfirmation TicketStatus = "AWAITING_CONFIRMATION"
	TicketStatusClosed               TicketStatus = "CLOSED"
)

// ParseTicketStatus validates a status string at the boundary. Anything
// outside the closed enum is rejected.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch TicketStatus(raw) {
	case TicketStatusPending, TicketStatusInProgress, TicketStatusEscalated,
		TicketStatusAwaitingConfirmation, TicketStatusClosed:
		return TicketStatus(raw), nil
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                 int64
	ContactName        string
	ContactSurname     string
	ContactEmail       string
	ContactPhone       string
	CompanyID          *int64
	ServiceOfferingID  *int64
	CategoryID         *int64
	ContactRoleID      *int64
	RequesterID        *int64
	TechnicianID       *int64
	EscalatedToID      *int64
	EscalationLevel    int
	Description        string
	Status             TicketStatus
	PriorStatus        *TicketStatus
	ConfirmationToken  *string
	ProcessingDuration *time.Duration
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ClosedAt           *time.Time
}

// ReferenceCode renders the public ticket number, e.g. TKK00042.
func (t *Ticket) ReferenceCode() string {
	return fmt.Sprintf("TKK%05d", t.ID)
}
