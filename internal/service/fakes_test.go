package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/events"
	"github.com/techexpert/helpdesk/internal/repository"
)

// fakeTxRunner satisfies repository.TxRunner without a database. The nil
// pgx.Tx is fine because every fake repository ignores WithTx.
type fakeTxRunner struct{}

func (fakeTxRunner) Run(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

type fakeTicketRepo struct {
	mu         sync.Mutex
	nextID     int64
	tickets    map[int64]domain.Ticket
	updateErrs []error
	updates    int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]domain.Ticket)}
}

func (r *fakeTicketRepo) WithTx(pgx.Tx) repository.TicketRepository { return r }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	ticket.Version = 1
	ticket.CreatedAt = time.Now().Add(-time.Minute)
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if len(r.updateErrs) > 0 {
		err := r.updateErrs[0]
		r.updateErrs = r.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	if ticket.ConfirmationToken != nil {
		for id, other := range r.tickets {
			if id == ticket.ID || other.ConfirmationToken == nil {
				continue
			}
			if *other.ConfirmationToken == *ticket.ConfirmationToken {
				return uniqueViolation()
			}
		}
	}
	ticket.Version++
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTicketRepo) GetByToken(_ context.Context, token string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tickets {
		if stored.ConfirmationToken != nil && *stored.ConfirmationToken == token {
			copied := stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, stored.Status) {
			continue
		}
		result = append(result, stored)
	}
	return result, nil
}

func (r *fakeTicketRepo) CountByStatus(context.Context) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.TicketStatus]int64)
	for _, stored := range r.tickets {
		counts[stored.Status]++
	}
	return counts, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) stored(id int64) domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickets[id]
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type fakeEscalationRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []domain.EscalationRecord
}

func (r *fakeEscalationRepo) WithTx(pgx.Tx) repository.EscalationRepository { return r }

func (r *fakeEscalationRepo) Create(_ context.Context, record *domain.EscalationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	record.ID = r.nextID
	record.CreatedAt = time.Now()
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeEscalationRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.EscalationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.EscalationRecord
	for _, record := range r.records {
		if record.TicketID == ticketID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (r *fakeEscalationRepo) CountByTicket(ctx context.Context, ticketID int64) (int64, error) {
	records, _ := r.ListByTicket(ctx, ticketID)
	return int64(len(records)), nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	nextID  int64
	reports map[int64]domain.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[int64]domain.Report)}
}

func (r *fakeReportRepo) Create(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[report.TicketID]; exists {
		return uniqueViolation()
	}
	r.nextID++
	report.ID = r.nextID
	report.CreatedAt = time.Now()
	r.reports[report.TicketID] = *report
	return nil
}

func (r *fakeReportRepo) GetByTicket(_ context.Context, ticketID int64) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &report, nil
}

type fakeAttachmentRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	attachment.ID = r.nextID
	attachment.CreatedAt = time.Now()
	r.items = append(r.items, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Attachment
	for _, item := range r.items {
		if item.TicketID == ticketID {
			result = append(result, item)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User)}
}

func (r *fakeUserRepo) add(user domain.User) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user.ID
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.add(*user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, _ repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		result = append(result, user)
	}
	return result, nil
}

func (r *fakeUserRepo) SetRoles(_ context.Context, userID int64, roles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Roles = roles
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepo) HasRole(_ context.Context, userID int64, role string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	return user.HasRole(role), nil
}

func (r *fakeUserRepo) ListEmailsByRoles(_ context.Context, roles []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var result []string
	for _, user := range r.users {
		if !user.Active {
			continue
		}
		for _, role := range roles {
			if user.HasRole(role) {
				if _, dup := seen[user.Email]; !dup {
					seen[user.Email] = struct{}{}
					result = append(result, user.Email)
				}
				break
			}
		}
	}
	return result, nil
}

type fakeCompanyRepo struct {
	mu        sync.Mutex
	nextID    int64
	companies map[int64]domain.Company
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[int64]domain.Company)}
}

func (r *fakeCompanyRepo) add(company domain.Company) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	company.ID = r.nextID
	r.companies[company.ID] = company
	return company.ID
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *domain.Company) error {
	company.ID = r.add(*company)
	return nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.companies[company.ID] = *company
	return nil
}

func (r *fakeCompanyRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.companies, id)
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &company, nil
}

func (r *fakeCompanyRepo) List(context.Context) ([]domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Company
	for _, company := range r.companies {
		result = append(result, company)
	}
	return result, nil
}

type fakeOfferingRepo struct {
	mu        sync.Mutex
	nextID    int64
	offerings map[int64]domain.ServiceOffering
}

func newFakeOfferingRepo() *fakeOfferingRepo {
	return &fakeOfferingRepo{offerings: make(map[int64]domain.ServiceOffering)}
}

func (r *fakeOfferingRepo) add(offering domain.ServiceOffering) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	offering.ID = r.nextID
	r.offerings[offering.ID] = offering
	return offering.ID
}

func (r *fakeOfferingRepo) Create(_ context.Context, offering *domain.ServiceOffering) error {
	offering.ID = r.add(*offering)
	return nil
}

func (r *fakeOfferingRepo) Update(_ context.Context, offering *domain.ServiceOffering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offerings[offering.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.offerings[offering.ID] = *offering
	return nil
}

func (r *fakeOfferingRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offerings[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.offerings, id)
	return nil
}

func (r *fakeOfferingRepo) GetByID(_ context.Context, id int64) (*domain.ServiceOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offering, ok := r.offerings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &offering, nil
}

func (r *fakeOfferingRepo) List(_ context.Context, _ *int64) ([]domain.ServiceOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ServiceOffering
	for _, offering := range r.offerings {
		result = append(result, offering)
	}
	return result, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

type recordingMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

type sentMail struct {
	to      []string
	subject string
	body    string
}

func (m *recordingMailer) Send(_ context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *recordingMailer) messages() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}
