package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techexpert/helpdesk/internal/config"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/events"
	"github.com/techexpert/helpdesk/internal/mail"
	"github.com/techexpert/helpdesk/internal/observability"
	"github.com/techexpert/helpdesk/internal/repository"
)

// NotificationService turns lifecycle events into outbound emails. It runs
// strictly after the triggering mutation has committed; a delivery failure is
// logged and counted but never surfaces to the caller.
type NotificationService struct {
	mailer  mail.Mailer
	users   repository.UserRepository
	logger  *zap.Logger
	metrics *observability.Metrics
	cfg     config.NotificationConfig
}

func NewNotificationService(
	mailer mail.Mailer,
	users repository.UserRepository,
	logger *zap.Logger,
	metrics *observability.Metrics,
	cfg config.NotificationConfig,
) *NotificationService {
	return &NotificationService{
		mailer:  mailer,
		users:   users,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Register subscribes the notification handlers on the dispatcher.
func (n *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
	dispatcher.Subscribe(events.EventClosureRequested, n.handleClosureRequested)
	dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	subject := fmt.Sprintf("Ticket %s registered", payload.Reference)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour support request has been registered under reference %s.\r\nOur team will take it in charge shortly.\r\n\r\nDescription:\r\n%s\r\n\r\nTechExpert Support",
		payload.ContactName, payload.Reference, payload.Description)
	n.deliver(ctx, "ticket_created_contact", []string{payload.ContactEmail}, subject, body)

	// supervision staff get their own copy so new tickets never sit unseen
	staff, err := n.users.ListEmailsByRoles(ctx, []string{domain.RoleAdministrator, domain.RoleSupervisor})
	if err != nil {
		n.reportFailure("ticket_created_staff", event, err)
		return err
	}
	if len(staff) == 0 {
		return nil
	}
	staffSubject := fmt.Sprintf("New ticket %s awaiting triage", payload.Reference)
	staffBody := fmt.Sprintf(
		"A new ticket %s was submitted by %s (%s).\r\n\r\nDescription:\r\n%s",
		payload.Reference, payload.ContactName, payload.ContactEmail, payload.Description)
	n.deliver(ctx, "ticket_created_staff", staff, staffSubject, staffBody)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	technicianName := "our technical team"
	if technician, err := n.users.GetByID(ctx, payload.TechnicianID); err == nil {
		technicianName = technician.FullName()
	}

	subject := fmt.Sprintf("Ticket %s taken in charge", payload.Reference)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour ticket %s is now being handled by %s.\r\nWe will keep you informed of its progress.\r\n\r\nTechExpert Support",
		payload.ContactName, payload.Reference, technicianName)
	n.deliver(ctx, "ticket_assigned", []string{payload.ContactEmail}, subject, body)
	return nil
}

func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	supervisor, err := n.users.GetByID(ctx, payload.SupervisorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("supervisor %d not found", payload.SupervisorID)
		}
		n.reportFailure("ticket_escalated", event, err)
		return err
	}

	subject := fmt.Sprintf("Ticket %s escalated to you (level %d)", payload.Reference, payload.EscalationLevel)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nTicket %s has been escalated to you.\r\nEscalation level: %d\r\n\r\nComment:\r\n%s",
		supervisor.FullName(), payload.Reference, payload.EscalationLevel, payload.Comment)
	n.deliver(ctx, "ticket_escalated", []string{supervisor.Email}, subject, body)
	return nil
}

func (n *NotificationService) handleClosureRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ClosureRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	link := fmt.Sprintf("%s/api/v1/tickets/confirm/%s", n.cfg.LinkBaseURL, payload.Token)
	subject := fmt.Sprintf("Please confirm closure of ticket %s", payload.Reference)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\nWe believe your request %s has been resolved.\r\nPlease confirm its closure by following this link:\r\n\r\n%s\r\n\r\nIf the problem persists, simply ignore this message and the ticket will remain open.\r\n\r\nTechExpert Support",
		payload.ContactName, payload.Reference, link)
	n.deliver(ctx, "closure_requested", []string{payload.ContactEmail}, subject, body)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	subject := fmt.Sprintf("Ticket %s closed", payload.Reference)
	body := fmt.Sprintf(
		"Hello,\r\n\r\nYour ticket %s was closed on %s.\r\nThank you for confirming the resolution.\r\n\r\nTechExpert Support",
		payload.Reference, payload.ClosedAt.Format("2006-01-02 15:04"))
	n.deliver(ctx, "ticket_closed", []string{payload.ContactEmail}, subject, body)
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, kind string, to []string, subject, body string) {
	if len(to) == 0 || to[0] == "" {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout())
	defer cancel()
	if err := n.mailer.Send(sendCtx, to, subject, body); err != nil {
		n.metrics.RecordDeliveryFailure(kind)
		if n.logger != nil {
			n.logger.Error("notification delivery failed",
				zap.String("kind", kind),
				zap.Strings("to", to),
				zap.Error(err))
		}
	}
}

func (n *NotificationService) reportFailure(kind string, event events.Event, err error) {
	n.metrics.RecordDeliveryFailure(kind)
	if n.logger != nil {
		n.logger.Error("notification recipient resolution failed",
			zap.String("kind", kind),
			zap.String("event_id", event.ID),
			zap.Int64("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
