package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techexpert/helpdesk/internal/auth"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/events"
	"github.com/techexpert/helpdesk/internal/repository"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// maxEscalationComment bounds the free-text escalation comment.
const maxEscalationComment = 500

// tokenMintAttempts bounds retries when a freshly minted confirmation token
// collides with a live one. A collision is astronomically unlikely but must
// be a retry, not a silent overwrite.
const tokenMintAttempts = 3

// TicketService is the ticket lifecycle engine. It owns the status state
// machine, the escalation workflow and the closure-confirmation protocol.
type TicketService struct {
	tickets      repository.TicketRepository
	escalations  repository.EscalationRepository
	reports      repository.ReportRepository
	attachments  repository.AttachmentRepository
	users        repository.UserRepository
	companies    repository.CompanyRepository
	offerings    repository.ServiceOfferingRepository
	tx           repository.TxRunner
	caps         auth.CapabilityChecker
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	storeTimeout time.Duration
}

// TicketDependencies bundles collaborators for the lifecycle engine.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	EscalationRepo repository.EscalationRepository
	ReportRepo     repository.ReportRepository
	AttachmentRepo repository.AttachmentRepository
	UserRepo       repository.UserRepository
	CompanyRepo    repository.CompanyRepository
	OfferingRepo   repository.ServiceOfferingRepository
	Tx             repository.TxRunner
	Capabilities   auth.CapabilityChecker
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	StoreTimeout   time.Duration
}

// TicketCreateInput describes ticket creation payload. Either the inline
// contact fields (external flow) or RequesterID (internal flow, contact data
// copied from the known user) must be provided.
type TicketCreateInput struct {
	ContactName       string
	ContactSurname    string
	ContactEmail      string
	ContactPhone      string
	CompanyID         *int64
	ServiceOfferingID *int64
	CategoryID        *int64
	ContactRoleID     *int64
	RequesterID       *int64
	Description       string
}

// ReportInput describes the closure report payload.
type ReportInput struct {
	Summary      string
	ActionsTaken string
	TechnicianID *int64
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
}

// NewTicketService constructs the engine.
func NewTicketService(deps TicketDependencies) *TicketService {
	timeout := deps.StoreTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TicketService{
		tickets:      deps.TicketRepo,
		escalations:  deps.EscalationRepo,
		reports:      deps.ReportRepo,
		attachments:  deps.AttachmentRepo,
		users:        deps.UserRepo,
		companies:    deps.CompanyRepo,
		offerings:    deps.OfferingRepo,
		tx:           deps.Tx,
		caps:         deps.Capabilities,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
		storeTimeout: timeout,
	}
}

// CreateTicket registers a new support request and notifies the requester
// plus the supervision staff.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	ticket := &domain.Ticket{
		ContactName:       strings.TrimSpace(input.ContactName),
		ContactSurname:    strings.TrimSpace(input.ContactSurname),
		ContactEmail:      strings.TrimSpace(input.ContactEmail),
		ContactPhone:      strings.TrimSpace(input.ContactPhone),
		CompanyID:         input.CompanyID,
		ServiceOfferingID: input.ServiceOfferingID,
		CategoryID:        input.CategoryID,
		ContactRoleID:     input.ContactRoleID,
		RequesterID:       input.RequesterID,
		Description:       strings.TrimSpace(input.Description),
		Status:            domain.TicketStatusPending,
	}

	if input.RequesterID != nil {
		requester, err := s.users.GetByID(ctx, *input.RequesterID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("requester", map[string]any{"user_id": *input.RequesterID})
			}
			return nil, apperrors.MapError(err)
		}
		ticket.ContactName = requester.FirstName
		ticket.ContactSurname = requester.LastName
		ticket.ContactEmail = requester.Email
		ticket.ContactPhone = requester.Phone
		if ticket.CompanyID == nil {
			ticket.CompanyID = requester.CompanyID
		}
	}

	if missing := missingCreateFields(ticket); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields",
			map[string]any{"fields": missing})
	}

	if ticket.CompanyID != nil {
		if _, err := s.companies.GetByID(ctx, *ticket.CompanyID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("company", map[string]any{"company_id": *ticket.CompanyID})
			}
			return nil, apperrors.MapError(err)
		}
	}
	if ticket.ServiceOfferingID != nil {
		offering, err := s.offerings.GetByID(ctx, *ticket.ServiceOfferingID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("service offering", map[string]any{"service_offering_id": *ticket.ServiceOfferingID})
			}
			return nil, apperrors.MapError(err)
		}
		if offering.CompanyID != nil && ticket.CompanyID != nil && *offering.CompanyID != *ticket.CompanyID {
			return nil, apperrors.NewValidationError("service offering does not belong to company", nil)
		}
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  input.RequesterID,
		Payload: events.TicketCreatedPayload{
			Reference:      ticket.ReferenceCode(),
			ContactName:    ticket.ContactName + " " + ticket.ContactSurname,
			ContactEmail:   ticket.ContactEmail,
			CompanyID:      ticket.CompanyID,
			Description:    ticket.Description,
			SubmittedByRef: input.RequesterID != nil,
		},
	})
	return ticket, nil
}

// AssignTechnician puts a ticket in progress under the given technician and
// lets the requester know it has been taken in charge. Assigning on an
// escalated ticket returns it to normal processing.
func (s *TicketService) AssignTechnician(ctx context.Context, ticketID, technicianID int64) (*domain.Ticket, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	ok, err := s.caps.HasCapability(ctx, technicianID, domain.CapabilityTriage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"user_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewValidationError("assignee cannot triage tickets",
			map[string]any{"user_id": technicianID})
	}

	var ticket *domain.Ticket
	err = s.tx.Run(ctx, func(tx pgx.Tx) error {
		tickets := s.tickets.WithTx(tx)
		var err error
		ticket, err = tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == domain.TicketStatusClosed {
			return apperrors.NewAlreadyClosed(ticket.ID)
		}
		if !isValidTransition(ticket.Status, domain.TicketStatusInProgress) {
			return apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusInProgress))
		}
		if ticket.Status == domain.TicketStatusEscalated {
			// returning from escalation: the target only exists while escalated
			ticket.EscalatedToID = nil
		}
		if ticket.Status == domain.TicketStatusAwaitingConfirmation {
			// leaving confirmation invalidates the outstanding token
			ticket.ConfirmationToken = nil
			ticket.PriorStatus = nil
		}
		ticket.TechnicianID = &technicianID
		ticket.Status = domain.TicketStatusInProgress
		return tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  &technicianID,
		Payload: events.TicketAssignedPayload{
			Reference:    ticket.ReferenceCode(),
			ContactName:  ticket.ContactName + " " + ticket.ContactSurname,
			ContactEmail: ticket.ContactEmail,
			TechnicianID: technicianID,
			Description:  ticket.Description,
		},
	})
	return ticket, nil
}

// Escalate routes a ticket to a supervisor. The ticket update and the audit
// record are committed atomically; the supervisor notification follows the
// commit and never undoes it.
func (s *TicketService) Escalate(ctx context.Context, ticketID, actorID, supervisorID int64, comment string) (*domain.Ticket, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	comment = strings.TrimSpace(comment)
	if len(comment) > maxEscalationComment {
		return nil, apperrors.NewValidationError("comment too long",
			map[string]any{"max_length": maxEscalationComment})
	}

	ok, err := s.caps.HasCapability(ctx, supervisorID, domain.CapabilitySupervise)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("supervisor", map[string]any{"user_id": supervisorID})
		}
		return nil, apperrors.MapError(err)
	}
	if !ok {
		return nil, apperrors.NewValidationError("target user cannot receive escalations",
			map[string]any{"user_id": supervisorID})
	}

	var ticket *domain.Ticket
	err = s.tx.Run(ctx, func(tx pgx.Tx) error {
		tickets := s.tickets.WithTx(tx)
		escalations := s.escalations.WithTx(tx)

		var err error
		ticket, err = tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == domain.TicketStatusClosed {
			return apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusEscalated))
		}
		if ticket.EscalatedToID != nil && *ticket.EscalatedToID == supervisorID {
			return apperrors.NewDuplicateEscalation(supervisorID)
		}
		if ticket.Status == domain.TicketStatusAwaitingConfirmation {
			// leaving confirmation invalidates the outstanding token
			ticket.ConfirmationToken = nil
			ticket.PriorStatus = nil
		}

		ticket.EscalatedToID = &supervisorID
		ticket.EscalationLevel++
		ticket.Status = domain.TicketStatusEscalated
		if err := tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return escalations.Create(ctx, &domain.EscalationRecord{
			TicketID:     ticket.ID,
			ActorID:      actorID,
			SupervisorID: supervisorID,
			Comment:      comment,
		})
	})
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticket.ID,
		ActorID:  &actorID,
		Payload: events.TicketEscalatedPayload{
			Reference:       ticket.ReferenceCode(),
			SupervisorID:    supervisorID,
			EscalationLevel: ticket.EscalationLevel,
			Comment:         comment,
		},
	})
	return ticket, nil
}

// RequestClosure mints a single-use confirmation token, parks the ticket in
// AWAITING_CONFIRMATION and mails the client a confirmation link. The token
// is returned so the request layer can surface it to trusted callers.
func (s *TicketService) RequestClosure(ctx context.Context, ticketID int64) (string, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	var ticket *domain.Ticket
	var token string

	err := s.tx.Run(ctx, func(tx pgx.Tx) error {
		tickets := s.tickets.WithTx(tx)

		var err error
		ticket, err = tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == domain.TicketStatusClosed {
			return apperrors.NewAlreadyClosed(ticket.ID)
		}

		if ticket.Status != domain.TicketStatusAwaitingConfirmation {
			prior := ticket.Status
			ticket.PriorStatus = &prior
		}
		ticket.Status = domain.TicketStatusAwaitingConfirmation

		for attempt := 0; attempt < tokenMintAttempts; attempt++ {
			token, err = newConfirmationToken()
			if err != nil {
				return err
			}
			ticket.ConfirmationToken = &token
			err = tickets.Update(ctx, ticket)
			if err == nil {
				return nil
			}
			if !repository.IsUniqueViolation(err) {
				return err
			}
		}
		return apperrors.NewConflict("could not mint a unique confirmation token", nil)
	})
	if err != nil {
		return "", s.mapStoreError(err, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventClosureRequested,
		TicketID: ticket.ID,
		Payload: events.ClosureRequestedPayload{
			Reference:    ticket.ReferenceCode(),
			ContactName:  ticket.ContactName + " " + ticket.ContactSurname,
			ContactEmail: ticket.ContactEmail,
			Token:        token,
		},
	})
	return token, nil
}

// ConfirmClosure closes the ticket identified by the confirmation token. The
// same TOKEN_NOT_FOUND result covers unknown, consumed and replayed tokens.
// A persistence failure rolls the whole transition back, leaving the ticket
// awaiting confirmation with the token still usable.
func (s *TicketService) ConfirmClosure(ctx context.Context, token string) (*domain.Ticket, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	if strings.TrimSpace(token) == "" {
		return nil, apperrors.NewTokenNotFound()
	}

	var ticket *domain.Ticket
	err := s.tx.Run(ctx, func(tx pgx.Tx) error {
		tickets := s.tickets.WithTx(tx)

		found, err := tickets.GetByToken(ctx, token)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewTokenNotFound()
			}
			return err
		}

		// re-read under lock; a concurrent confirm or escalate may have won
		ticket, err = tickets.GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return err
		}
		if ticket.ConfirmationToken == nil || *ticket.ConfirmationToken != token {
			return apperrors.NewTokenNotFound()
		}
		if ticket.Status != domain.TicketStatusAwaitingConfirmation {
			return apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusClosed))
		}

		now := time.Now()
		elapsed := now.Sub(ticket.CreatedAt)
		ticket.Status = domain.TicketStatusClosed
		ticket.ClosedAt = &now
		ticket.ProcessingDuration = &elapsed
		ticket.ConfirmationToken = nil
		ticket.PriorStatus = nil
		return tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, s.mapStoreError(err, 0)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Payload: events.TicketClosedPayload{
			Reference:    ticket.ReferenceCode(),
			ContactEmail: ticket.ContactEmail,
			ClosedAt:     *ticket.ClosedAt,
			FinalStatus:  ticket.Status,
		},
	})
	return ticket, nil
}

// CancelClosure withdraws a pending closure request, restoring the status the
// ticket held before it and invalidating the outstanding token.
func (s *TicketService) CancelClosure(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	var ticket *domain.Ticket
	err := s.tx.Run(ctx, func(tx pgx.Tx) error {
		tickets := s.tickets.WithTx(tx)

		var err error
		ticket, err = tickets.GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != domain.TicketStatusAwaitingConfirmation {
			return apperrors.NewInvalidTransition(string(ticket.Status), "prior status")
		}

		restored := domain.TicketStatusPending
		if ticket.PriorStatus != nil {
			restored = *ticket.PriorStatus
		} else if ticket.TechnicianID != nil {
			restored = domain.TicketStatusInProgress
		}
		ticket.Status = restored
		ticket.ConfirmationToken = nil
		ticket.PriorStatus = nil
		return tickets.Update(ctx, ticket)
	})
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}
	return ticket, nil
}

// CreateReport records the closure artifact. Reports are a post-closure step
// supplied by the caller; at most one exists per ticket.
func (s *TicketService) CreateReport(ctx context.Context, ticketID int64, input ReportInput) (*domain.Report, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}
	if ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusClosed))
	}
	if strings.TrimSpace(input.Summary) == "" {
		return nil, apperrors.NewValidationError("summary required", nil)
	}

	technicianID := input.TechnicianID
	if technicianID == nil {
		technicianID = ticket.TechnicianID
	}
	report := &domain.Report{
		TicketID:     ticket.ID,
		Summary:      strings.TrimSpace(input.Summary),
		ActionsTaken: strings.TrimSpace(input.ActionsTaken),
		TechnicianID: technicianID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("report already exists for ticket",
				map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

// AddAttachment stores attachment metadata under the ticket.
func (s *TicketService) AddAttachment(ctx context.Context, ticketID int64, input AttachmentInput) (*domain.Attachment, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.mapStoreError(err, ticketID)
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.NewValidationError("file_name required", nil)
	}

	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		StorageKey: uuid.NewString(),
		FileName:   strings.TrimSpace(input.FileName),
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachment, nil
}

// GetTicket fetches a ticket with its escalation trail and attachments.
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (*domain.Ticket, []domain.EscalationRecord, []domain.Attachment, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, s.mapStoreError(err, ticketID)
	}
	trail, err := s.escalations.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	files, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, apperrors.MapError(err)
	}
	return ticket, trail, files, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	ctx, cancel := s.boundStore(ctx)
	defer cancel()
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func missingCreateFields(ticket *domain.Ticket) []string {
	var missing []string
	if ticket.ContactEmail == "" {
		missing = append(missing, "email")
	}
	if ticket.ContactName == "" {
		missing = append(missing, "name")
	}
	if ticket.ContactSurname == "" {
		missing = append(missing, "surname")
	}
	if ticket.ContactPhone == "" {
		missing = append(missing, "phone")
	}
	if ticket.CompanyID == nil {
		missing = append(missing, "company_id")
	}
	if ticket.ServiceOfferingID == nil {
		missing = append(missing, "service_offering_id")
	}
	if ticket.CategoryID == nil {
		missing = append(missing, "category_id")
	}
	if ticket.ContactRoleID == nil {
		missing = append(missing, "contact_role_id")
	}
	if ticket.Description == "" {
		missing = append(missing, "description")
	}
	return missing
}

// boundStore derives a context bounding a persistence round of the current
// operation so no caller blocks indefinitely on the store.
func (s *TicketService) boundStore(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *TicketService) mapStoreError(err error, ticketID int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		details := map[string]any{}
		if ticketID != 0 {
			details["ticket_id"] = ticketID
		}
		return apperrors.NewNotFound("ticket", details)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict("ticket was modified concurrently, retry",
			map[string]any{"ticket_id": ticketID})
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewConflict("store operation timed out, retry",
			map[string]any{"ticket_id": ticketID})
	default:
		return apperrors.MapError(err)
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending: {
		domain.TicketStatusInProgress,
		domain.TicketStatusEscalated,
		domain.TicketStatusAwaitingConfirmation,
	},
	domain.TicketStatusInProgress: {
		domain.TicketStatusEscalated,
		domain.TicketStatusAwaitingConfirmation,
	},
	domain.TicketStatusEscalated: {
		domain.TicketStatusInProgress,
		domain.TicketStatusEscalated,
		domain.TicketStatusAwaitingConfirmation,
	},
	domain.TicketStatusAwaitingConfirmation: {
		domain.TicketStatusClosed,
		domain.TicketStatusPending,
		domain.TicketStatusInProgress,
		domain.TicketStatusEscalated,
		domain.TicketStatusAwaitingConfirmation,
	},
	domain.TicketStatusClosed: {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
