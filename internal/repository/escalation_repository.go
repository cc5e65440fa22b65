package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/domain"
)

// EscalationRepository stores the append-only escalation audit trail. There
// is deliberately no update or delete.
type EscalationRepository interface {
	WithTx(tx pgx.Tx) EscalationRepository
	Create(ctx context.Context, record *domain.EscalationRecord) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.EscalationRecord, error)
	CountByTicket(ctx context.Context, ticketID int64) (int64, error)
}

type escalationRepository struct {
	db Queryer
}

// NewEscalationRepository builds repository.
func NewEscalationRepository(db Queryer) EscalationRepository {
	return &escalationRepository{db: db}
}

func (r *escalationRepository) WithTx(tx pgx.Tx) EscalationRepository {
	return &escalationRepository{db: tx}
}

func (r *escalationRepository) Create(ctx context.Context, record *domain.EscalationRecord) error {
	const query = `
        INSERT INTO escalation_records (ticket_id, actor_id, supervisor_id, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		record.TicketID,
		record.ActorID,
		record.SupervisorID,
		record.Comment,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *escalationRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.EscalationRecord, error) {
	const query = `
        SELECT id, ticket_id, actor_id, supervisor_id, comment, created_at
        FROM escalation_records WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationRecord
	for rows.Next() {
		var record domain.EscalationRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.ActorID,
			&record.SupervisorID,
			&record.Comment,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func (r *escalationRepository) CountByTicket(ctx context.Context, ticketID int64) (int64, error) {
	const query = `SELECT COUNT(*) FROM escalation_records WHERE ticket_id=$1`
	var count int64
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
