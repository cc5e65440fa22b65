package repository

import (
	"context"

	"github.com/techexpert/helpdesk/internal/domain"
)

// ReportRepository persists closure reports. The ticket_id column carries a
// unique constraint, so inserting a second report for a ticket fails.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByTicket(ctx context.Context, ticketID int64) (*domain.Report, error)
}

type reportRepository struct {
	db Queryer
}

// NewReportRepository constructs repository.
func NewReportRepository(db Queryer) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (ticket_id, summary, actions_taken, technician_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		report.TicketID,
		report.Summary,
		report.ActionsTaken,
		report.TechnicianID,
	).Scan(&report.ID, &report.CreatedAt)
}

func (r *reportRepository) GetByTicket(ctx context.Context, ticketID int64) (*domain.Report, error) {
	const query = `
        SELECT id, ticket_id, summary, actions_taken, technician_id, created_at
        FROM reports WHERE ticket_id=$1`
	var report domain.Report
	if err := r.db.QueryRow(ctx, query, ticketID).Scan(
		&report.ID,
		&report.TicketID,
		&report.Summary,
		&report.ActionsTaken,
		&report.TechnicianID,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
