package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/techexpert/helpdesk/internal/api/dto"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/service"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// TicketsHandler serves the public ticket surface: the submission form and
// the closure confirmation link sent by mail.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		ContactName:       req.ContactName,
		ContactSurname:    req.ContactSurname,
		ContactEmail:      req.ContactEmail,
		ContactPhone:      req.ContactPhone,
		CompanyID:         req.CompanyID,
		ServiceOfferingID: req.ServiceOfferingID,
		CategoryID:        req.CategoryID,
		ContactRoleID:     req.ContactRoleID,
		Description:       req.Description,
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ConfirmClosure GET /tickets/confirm/:token. This is the link from the
// confirmation mail, so it must work without authentication.
func (h *TicketsHandler) ConfirmClosure(c *fiber.Ctx) error {
	ticket, err := h.tickets.ConfirmClosure(c.UserContext(), c.Params("token"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		Reference:       ticket.ReferenceCode(),
		ContactName:     ticket.ContactName + " " + ticket.ContactSurname,
		ContactEmail:    ticket.ContactEmail,
		CompanyID:       ticket.CompanyID,
		TechnicianID:    ticket.TechnicianID,
		EscalatedToID:   ticket.EscalatedToID,
		EscalationLevel: ticket.EscalationLevel,
		Status:          ticket.Status,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		ClosedAt:        ticket.ClosedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, trail []domain.EscalationRecord, files []domain.Attachment) dto.TicketDetailResponse {
	escalations := make([]dto.EscalationResponse, 0, len(trail))
	for _, record := range trail {
		escalations = append(escalations, dto.EscalationResponse{
			ID:           record.ID,
			ActorID:      record.ActorID,
			SupervisorID: record.SupervisorID,
			Comment:      record.Comment,
			CreatedAt:    record.CreatedAt,
		})
	}
	attachments := make([]dto.AttachmentResponse, 0, len(files))
	for _, file := range files {
		attachments = append(attachments, attachmentResponse(&file))
	}

	var processingSeconds *int64
	if ticket.ProcessingDuration != nil {
		secs := int64(ticket.ProcessingDuration.Seconds())
		processingSeconds = &secs
	}
	return dto.TicketDetailResponse{
		ID:                ticket.ID,
		Reference:         ticket.ReferenceCode(),
		ContactName:       ticket.ContactName,
		ContactSurname:    ticket.ContactSurname,
		ContactEmail:      ticket.ContactEmail,
		ContactPhone:      ticket.ContactPhone,
		CompanyID:         ticket.CompanyID,
		ServiceOfferingID: ticket.ServiceOfferingID,
		CategoryID:        ticket.CategoryID,
		ContactRoleID:     ticket.ContactRoleID,
		RequesterID:       ticket.RequesterID,
		TechnicianID:      ticket.TechnicianID,
		EscalatedToID:     ticket.EscalatedToID,
		EscalationLevel:   ticket.EscalationLevel,
		Description:       ticket.Description,
		Status:            ticket.Status,
		ProcessingSeconds: processingSeconds,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
		ClosedAt:          ticket.ClosedAt,
		Escalations:       escalations,
		Attachments:       attachments,
	}
}

func attachmentResponse(file *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        file.ID,
		FileName:  file.FileName,
		MimeType:  file.MimeType,
		SizeBytes: file.SizeBytes,
		CreatedAt: file.CreatedAt,
	}
}
