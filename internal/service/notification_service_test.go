package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techexpert/helpdesk/internal/config"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/events"
	"github.com/techexpert/helpdesk/internal/observability"
)

func newNotificationFixture() (*NotificationService, *recordingMailer, *fakeUserRepo, *observability.Metrics) {
	mailer := &recordingMailer{}
	users := newFakeUserRepo()
	metrics := observability.NewMetrics()
	svc := NewNotificationService(mailer, users, nil, metrics, config.NotificationConfig{
		EmailFrom:          "support@techexpert.example",
		LinkBaseURL:        "https://support.techexpert.example",
		SendTimeoutSeconds: 2,
	})
	return svc, mailer, users, metrics
}

func TestTicketCreatedNotifiesContactAndStaff(t *testing.T) {
	svc, mailer, users, _ := newNotificationFixture()
	users.add(domain.User{Email: "admin@techexpert.example", Active: true, Roles: []string{domain.RoleAdministrator}})
	users.add(domain.User{Email: "super@techexpert.example", Active: true, Roles: []string{domain.RoleSupervisor}})
	users.add(domain.User{Email: "gone@techexpert.example", Active: false, Roles: []string{domain.RoleSupervisor}})
	users.add(domain.User{Email: "tech@techexpert.example", Active: true, Roles: []string{domain.RoleTechnician}})

	err := svc.handleTicketCreated(context.Background(), events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			Reference:    "TKK00042",
			ContactName:  "Rita Requester",
			ContactEmail: "rita@acme.example",
			Description:  "printer on fire",
		},
	})
	require.NoError(t, err)

	sent := mailer.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, []string{"rita@acme.example"}, sent[0].to)
	assert.Contains(t, sent[0].subject, "TKK00042")

	// staff copy goes to active admins and supervisors only
	assert.ElementsMatch(t, []string{"admin@techexpert.example", "super@techexpert.example"}, sent[1].to)
}

func TestClosureRequestedMailCarriesConfirmationLink(t *testing.T) {
	svc, mailer, _, _ := newNotificationFixture()

	err := svc.handleClosureRequested(context.Background(), events.Event{
		Type: events.EventClosureRequested,
		Payload: events.ClosureRequestedPayload{
			Reference:    "TKK00007",
			ContactName:  "Rita Requester",
			ContactEmail: "rita@acme.example",
			Token:        "abc123",
		},
	})
	require.NoError(t, err)

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].body, "https://support.techexpert.example/api/v1/tickets/confirm/abc123")
}

func TestEscalatedMailGoesToSupervisor(t *testing.T) {
	svc, mailer, users, _ := newNotificationFixture()
	supervisorID := users.add(domain.User{
		FirstName: "Sara", LastName: "Super",
		Email: "sara@techexpert.example", Active: true,
		Roles: []string{domain.RoleSupervisor},
	})

	err := svc.handleTicketEscalated(context.Background(), events.Event{
		Type: events.EventTicketEscalated,
		Payload: events.TicketEscalatedPayload{
			Reference:       "TKK00010",
			SupervisorID:    supervisorID,
			EscalationLevel: 2,
			Comment:         "client is blocked",
		},
	})
	require.NoError(t, err)

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"sara@techexpert.example"}, sent[0].to)
	assert.Contains(t, sent[0].body, "client is blocked")
	assert.Contains(t, sent[0].subject, "level 2")
}

func TestDeliveryFailureIsCountedNotFatal(t *testing.T) {
	svc, mailer, _, metrics := newNotificationFixture()
	mailer.err = errors.New("smtp unreachable")

	err := svc.handleTicketClosed(context.Background(), events.Event{
		Type: events.EventTicketClosed,
		Payload: events.TicketClosedPayload{
			Reference:    "TKK00099",
			ContactEmail: "rita@acme.example",
			ClosedAt:     time.Now(),
			FinalStatus:  domain.TicketStatusClosed,
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, metrics.DeliveryFailures("ticket_closed"))
}

func TestDispatcherRoutesEventsToHandlers(t *testing.T) {
	svc, mailer, _, _ := newNotificationFixture()
	dispatcher := events.NewInMemoryDispatcher()
	svc.Register(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketAssigned,
		Payload: events.TicketAssignedPayload{
			Reference:    "TKK00003",
			ContactName:  "Rita Requester",
			ContactEmail: "rita@acme.example",
			TechnicianID: 12345,
		},
	})
	require.NoError(t, err)
	require.Len(t, mailer.messages(), 1)
}
