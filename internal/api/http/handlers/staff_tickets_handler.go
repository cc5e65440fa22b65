package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/techexpert/helpdesk/internal/api/dto"
	"github.com/techexpert/helpdesk/internal/auth"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/repository"
	"github.com/techexpert/helpdesk/internal/service"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// StaffTicketsHandler serves the authenticated lifecycle operations.
type StaffTicketsHandler struct {
	tickets *service.TicketService
	stats   *service.StatsService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, stats *service.StatsService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, stats: stats}
}

// CreateTicket POST /staff/tickets. A staff member opening a request for
// themselves gets their own contact data copied in.
func (h *StaffTicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	requesterID := req.RequesterID
	if requesterID == nil {
		requesterID = &principal.User.ID
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
		RequesterID:       requesterID,
		Description:       req.Description,
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /staff/tickets.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /staff/tickets/:id.
func (h *StaffTicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, trail, files, err := h.tickets.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, trail, files)})
}

// AssignTicket POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == 0 {
		// default to self-assignment
		principal, ok := auth.PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewValidationError("technician_id required", nil)
		}
		req.TechnicianID = principal.User.ID
	}
	ticket, err := h.tickets.AssignTechnician(c.UserContext(), id, req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// EscalateTicket POST /staff/tickets/:id/escalate.
func (h *StaffTicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.EscalateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SupervisorID == 0 {
		return apperrors.NewValidationError("supervisor_id required", nil)
	}
	ticket, err := h.tickets.Escalate(c.UserContext(), id, principal.User.ID, req.SupervisorID, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// RequestClosure POST /staff/tickets/:id/close-request.
func (h *StaffTicketsHandler) RequestClosure(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.tickets.RequestClosure(c.UserContext(), id); err != nil {
		return err
	}
	// the token travels only by mail
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{
		"ticket_id": id,
		"status":    domain.TicketStatusAwaitingConfirmation,
	}})
}

// CancelClosure POST /staff/tickets/:id/close-cancel.
func (h *StaffTicketsHandler) CancelClosure(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.CancelClosure(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CreateReport POST /staff/tickets/:id/report.
func (h *StaffTicketsHandler) CreateReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	technicianID := req.TechnicianID
	if technicianID == nil {
		technicianID = &principal.User.ID
	}
	report, err := h.tickets.CreateReport(c.UserContext(), id, service.ReportInput{
		Summary:      req.Summary,
		ActionsTaken: req.ActionsTaken,
		TechnicianID: technicianID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": reportResponse(report)})
}

// AddAttachment POST /staff/tickets/:id/attachments.
func (h *StaffTicketsHandler) AddAttachment(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.AttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := h.tickets.AddAttachment(c.UserContext(), id, service.AttachmentInput{
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// Stats GET /staff/tickets/stats.
func (h *StaffTicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status, err := domain.ParseTicketStatus(strings.TrimSpace(part))
			if err != nil {
				return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	filter.CompanyID = parseOptionalID(c.Query("company_id"))
	filter.TechnicianID = parseOptionalID(c.Query("technician_id"))
	filter.EscalatedToID = parseOptionalID(c.Query("escalated_to_id"))
	filter.RequesterID = parseOptionalID(c.Query("requester_id"))
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))

	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

func parseOptionalID(val string) *int64 {
	if val == "" {
		return nil
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func reportResponse(report *domain.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:           report.ID,
		TicketID:     report.TicketID,
		Summary:      report.Summary,
		ActionsTaken: report.ActionsTaken,
		TechnicianID: report.TechnicianID,
		CreatedAt:    report.CreatedAt,
	}
}
