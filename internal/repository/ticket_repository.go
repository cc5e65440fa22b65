package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CompanyID     *int64
	TechnicianID  *int64
	EscalatedToID *int64
	RequesterID   *int64
	Statuses      []domain.TicketStatus
	SearchTerm    *string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	WithTx(tx pgx.Tx) TicketRepository
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByToken(ctx context.Context, token string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error)
	Delete(ctx context.Context, id int64) error
}

type ticketRepository struct {
	db Queryer
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Queryer) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) WithTx(tx pgx.Tx) TicketRepository {
	return &ticketRepository{db: tx}
}

const ticketColumns = `id, contact_name, contact_surname, contact_email, contact_phone,
               company_id, service_offering_id, category_id, contact_role_id,
               requester_id, technician_id, escalated_to_id, escalation_level,
               description, status, prior_status, confirmation_token,
               processing_seconds, version, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (contact_name, contact_surname, contact_email, contact_phone,
            company_id, service_offering_id, category_id, contact_role_id,
            requester_id, technician_id, description, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, escalation_level, version, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.ContactName,
		ticket.ContactSurname,
		ticket.ContactEmail,
		ticket.ContactPhone,
		ticket.CompanyID,
		ticket.ServiceOfferingID,
		ticket.CategoryID,
		ticket.ContactRoleID,
		ticket.RequesterID,
		ticket.TechnicianID,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.EscalationLevel, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update persists the mutable ticket fields guarded by an optimistic
// compare-and-set on the version column. ErrVersionConflict means another
// writer got there first; the ticket in memory is stale.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET company_id=$1, service_offering_id=$2, category_id=$3,
            contact_role_id=$4, requester_id=$5, technician_id=$6, escalated_to_id=$7,
            escalation_level=$8, description=$9, status=$10, prior_status=$11,
            confirmation_token=$12, processing_seconds=$13, closed_at=$14,
            version=version+1, updated_at=NOW()
        WHERE id=$15 AND version=$16`
	cmd, err := r.db.Exec(ctx, query,
		ticket.CompanyID,
		ticket.ServiceOfferingID,
		ticket.CategoryID,
		ticket.ContactRoleID,
		ticket.RequesterID,
		ticket.TechnicianID,
		ticket.EscalatedToID,
		ticket.EscalationLevel,
		ticket.Description,
		ticket.Status,
		ticket.PriorStatus,
		ticket.ConfirmationToken,
		durationToSeconds(ticket.ProcessingDuration),
		ticket.ClosedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

// GetByIDForUpdate takes a row lock; only meaningful inside a transaction.
func (r *ticketRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1 FOR UPDATE`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

// GetByToken resolves a ticket by confirmation token. The token column is
// unique-indexed so concurrent confirmations find at most one row.
func (r *ticketRepository) GetByToken(ctx context.Context, token string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE confirmation_token=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, token)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("company_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.EscalatedToID != nil {
		args = append(args, *filter.EscalatedToID)
		clauses = append(clauses, fmt.Sprintf("escalated_to_id=$%d", len(args)))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(description) LIKE %s OR LOWER(contact_email) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM tickets GROUP BY status`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// Delete removes a ticket; escalation records, the report and attachments
// cascade at the schema level.
func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var priorStatus *string
	var processingSeconds *int64
	if err := row.Scan(
		&ticket.ID,
		&ticket.ContactName,
		&ticket.ContactSurname,
		&ticket.ContactEmail,
		&ticket.ContactPhone,
		&ticket.CompanyID,
		&ticket.ServiceOfferingID,
		&ticket.CategoryID,
		&ticket.ContactRoleID,
		&ticket.RequesterID,
		&ticket.TechnicianID,
		&ticket.EscalatedToID,
		&ticket.EscalationLevel,
		&ticket.Description,
		&ticket.Status,
		&priorStatus,
		&ticket.ConfirmationToken,
		&processingSeconds,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	if priorStatus != nil {
		status := domain.TicketStatus(*priorStatus)
		ticket.PriorStatus = &status
	}
	ticket.ProcessingDuration = secondsToDuration(processingSeconds)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func durationToSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	secs := int64(d.Seconds())
	return &secs
}

func secondsToDuration(secs *int64) *time.Duration {
	if secs == nil {
		return nil
	}
	d := time.Duration(*secs) * time.Second
	return &d
}
