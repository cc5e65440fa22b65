package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/domain"
)

// ServiceOfferingRepository manages service offering persistence.
type ServiceOfferingRepository interface {
	Create(ctx context.Context, offering *domain.ServiceOffering) error
	Update(ctx context.Context, offering *domain.ServiceOffering) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceOffering, error)
	List(ctx context.Context, companyID *int64) ([]domain.ServiceOffering, error)
}

type serviceOfferingRepository struct {
	db Queryer
}

// NewServiceOfferingRepository builds the repository.
func NewServiceOfferingRepository(db Queryer) ServiceOfferingRepository {
	return &serviceOfferingRepository{db: db}
}

func (r *serviceOfferingRepository) Create(ctx context.Context, offering *domain.ServiceOffering) error {
	const query = `
        INSERT INTO service_offerings (name, company_id)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		offering.Name,
		offering.CompanyID,
	).Scan(&offering.ID, &offering.CreatedAt, &offering.UpdatedAt)
}

func (r *serviceOfferingRepository) Update(ctx context.Context, offering *domain.ServiceOffering) error {
	const query = `
        UPDATE service_offerings SET name=$1, company_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, offering.Name, offering.CompanyID, offering.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceOfferingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM service_offerings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceOfferingRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceOffering, error) {
	const query = `
        SELECT id, name, company_id, created_at, updated_at
        FROM service_offerings WHERE id=$1`
	var offering domain.ServiceOffering
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&offering.ID,
		&offering.Name,
		&offering.CompanyID,
		&offering.CreatedAt,
		&offering.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &offering, nil
}

// List returns offerings, optionally narrowed to one company.
func (r *serviceOfferingRepository) List(ctx context.Context, companyID *int64) ([]domain.ServiceOffering, error) {
	query := `
        SELECT id, name, company_id, created_at, updated_at
        FROM service_offerings`
	args := []any{}
	if companyID != nil {
		query += ` WHERE company_id=$1`
		args = append(args, *companyID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceOffering
	for rows.Next() {
		var offering domain.ServiceOffering
		if err := rows.Scan(&offering.ID, &offering.Name, &offering.CompanyID, &offering.CreatedAt, &offering.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, offering)
	}
	return result, rows.Err()
}
