package events

import (
	"time"

	"github.com/techexpert/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketAssigned   EventType = "ticket_assigned"
	EventTicketEscalated  EventType = "ticket_escalated"
	EventClosureRequested EventType = "closure_requested"
	EventTicketClosed     EventType = "ticket_closed"
)

// Event represents a domain event emitted by the lifecycle engine after a
// mutation has committed.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   *int64      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Reference      string `json:"reference"`
	ContactName    string `json:"contact_name"`
	ContactEmail   string `json:"contact_email"`
	CompanyID      *int64 `json:"company_id,omitempty"`
	Description    string `json:"description"`
	SubmittedByRef bool   `json:"submitted_by_known_contact"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Reference    string `json:"reference"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	TechnicianID int64  `json:"technician_id"`
	Description  string `json:"description"`
}

// TicketEscalatedPayload payload.
type TicketEscalatedPayload struct {
	Reference       string `json:"reference"`
	SupervisorID    int64  `json:"supervisor_id"`
	EscalationLevel int    `json:"escalation_level"`
	Comment         string `json:"comment,omitempty"`
}

// ClosureRequestedPayload payload. The token travels only in this in-process
// event and the resulting mail, never in API responses.
type ClosureRequestedPayload struct {
	Reference    string `json:"reference"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	Token        string `json:"-"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Reference    string              `json:"reference"`
	ContactEmail string              `json:"contact_email"`
	ClosedAt     time.Time           `json:"closed_at"`
	FinalStatus  domain.TicketStatus `json:"final_status"`
}
