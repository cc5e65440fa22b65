package dto

import (
	"time"

	"github.com/techexpert/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Contact fields are required on the public
// form; authenticated staff may instead submit on behalf of a known user via
// requester_id.
type CreateTicketRequest struct {
	ContactName       string `json:"name"`
	ContactSurname    string `json:"surname"`
	ContactEmail      string `json:"email"`
	ContactPhone      string `json:"phone"`
	CompanyID         *int64 `json:"company_id"`
	ServiceOfferingID *int64 `json:"service_offering_id"`
	CategoryID        *int64 `json:"category_id"`
	ContactRoleID     *int64 `json:"contact_role_id"`
	RequesterID       *int64 `json:"requester_id"`
	Description       string `json:"description"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	TechnicianID int64 `json:"technician_id"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	SupervisorID int64  `json:"supervisor_id"`
	Comment      string `json:"comment"`
}

// CreateReportRequest payload.
type CreateReportRequest struct {
	Summary      string `json:"summary"`
	ActionsTaken string `json:"actions_taken"`
	TechnicianID *int64 `json:"technician_id"`
}

// AttachmentRequest describes attachment metadata input.
type AttachmentRequest struct {
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              int64               `json:"id"`
	Reference       string              `json:"reference"`
	ContactName     string              `json:"contact_name"`
	ContactEmail    string              `json:"contact_email"`
	CompanyID       *int64              `json:"company_id"`
	TechnicianID    *int64              `json:"technician_id"`
	EscalatedToID   *int64              `json:"escalated_to_id"`
	EscalationLevel int                 `json:"escalation_level"`
	Status          domain.TicketStatus `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	ClosedAt        *time.Time          `json:"closed_at,omitempty"`
}

// TicketDetailResponse provides full ticket info with the escalation trail
// and attachments. The confirmation token is deliberately absent.
type TicketDetailResponse struct {
	ID                int64                `json:"id"`
	Reference         string               `json:"reference"`
	ContactName       string               `json:"contact_name"`
	ContactSurname    string               `json:"contact_surname"`
	ContactEmail      string               `json:"contact_email"`
	ContactPhone      string               `json:"contact_phone"`
	CompanyID         *int64               `json:"company_id"`
	ServiceOfferingID *int64               `json:"service_offering_id"`
	CategoryID        *int64               `json:"category_id"`
	ContactRoleID     *int64               `json:"contact_role_id"`
	RequesterID       *int64               `json:"requester_id"`
	TechnicianID      *int64               `json:"technician_id"`
	EscalatedToID     *int64               `json:"escalated_to_id"`
	EscalationLevel   int                  `json:"escalation_level"`
	Description       string               `json:"description"`
	Status            domain.TicketStatus  `json:"status"`
	ProcessingSeconds *int64               `json:"processing_seconds,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	ClosedAt          *time.Time           `json:"closed_at,omitempty"`
	Escalations       []EscalationResponse `json:"escalations"`
	Attachments       []AttachmentResponse `json:"attachments"`
}

// EscalationResponse is one entry of the append-only escalation trail.
type EscalationResponse struct {
	ID           int64     `json:"id"`
	ActorID      int64     `json:"actor_id"`
	SupervisorID int64     `json:"supervisor_id"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportResponse is the closure artifact.
type ReportResponse struct {
	ID           int64     `json:"id"`
	TicketID     int64     `json:"ticket_id"`
	Summary      string    `json:"summary"`
	ActionsTaken string    `json:"actions_taken"`
	TechnicianID *int64    `json:"technician_id"`
	CreatedAt    time.Time `json:"created_at"`
}
