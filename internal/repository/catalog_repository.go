package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/domain"
)

// ProblemCategoryRepository manages the problem-description catalog.
type ProblemCategoryRepository interface {
	Create(ctx context.Context, category *domain.ProblemCategory) error
	Update(ctx context.Context, category *domain.ProblemCategory) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.ProblemCategory, error)
	List(ctx context.Context) ([]domain.ProblemCategory, error)
}

type problemCategoryRepository struct {
	lookup namedLookup
}

// NewProblemCategoryRepository builds the repository.
func NewProblemCategoryRepository(db Queryer) ProblemCategoryRepository {
	return &problemCategoryRepository{lookup: namedLookup{db: db, table: "problem_categories"}}
}

func (r *problemCategoryRepository) Create(ctx context.Context, category *domain.ProblemCategory) error {
	return r.lookup.create(ctx, category.Name, &category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *problemCategoryRepository) Update(ctx context.Context, category *domain.ProblemCategory) error {
	return r.lookup.update(ctx, category.ID, category.Name)
}

func (r *problemCategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.lookup.delete(ctx, id)
}

func (r *problemCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.ProblemCategory, error) {
	var category domain.ProblemCategory
	if err := r.lookup.get(ctx, id, &category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *problemCategoryRepository) List(ctx context.Context) ([]domain.ProblemCategory, error) {
	var result []domain.ProblemCategory
	err := r.lookup.list(ctx, func(scan rowScanner) error {
		var category domain.ProblemCategory
		if err := scan(&category.ID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return err
		}
		result = append(result, category)
		return nil
	})
	return result, err
}

// ContactRoleRepository manages the contact-role catalog.
type ContactRoleRepository interface {
	Create(ctx context.Context, role *domain.ContactRole) error
	Update(ctx context.Context, role *domain.ContactRole) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.ContactRole, error)
	List(ctx context.Context) ([]domain.ContactRole, error)
}

type contactRoleRepository struct {
	lookup namedLookup
}

// NewContactRoleRepository builds the repository.
func NewContactRoleRepository(db Queryer) ContactRoleRepository {
	return &contactRoleRepository{lookup: namedLookup{db: db, table: "contact_roles"}}
}

func (r *contactRoleRepository) Create(ctx context.Context, role *domain.ContactRole) error {
	return r.lookup.create(ctx, role.Name, &role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *contactRoleRepository) Update(ctx context.Context, role *domain.ContactRole) error {
	return r.lookup.update(ctx, role.ID, role.Name)
}

func (r *contactRoleRepository) Delete(ctx context.Context, id int64) error {
	return r.lookup.delete(ctx, id)
}

func (r *contactRoleRepository) GetByID(ctx context.Context, id int64) (*domain.ContactRole, error) {
	var role domain.ContactRole
	if err := r.lookup.get(ctx, id, &role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *contactRoleRepository) List(ctx context.Context) ([]domain.ContactRole, error) {
	var result []domain.ContactRole
	err := r.lookup.list(ctx, func(scan rowScanner) error {
		var role domain.ContactRole
		if err := scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return err
		}
		result = append(result, role)
		return nil
	})
	return result, err
}

// SoftwareRepository manages the supported-software catalog.
type SoftwareRepository interface {
	CreateType(ctx context.Context, swType *domain.SoftwareType) error
	ListTypes(ctx context.Context) ([]domain.SoftwareType, error)
	Create(ctx context.Context, software *domain.Software) error
	Update(ctx context.Context, software *domain.Software) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Software, error)
	List(ctx context.Context, typeID *int64) ([]domain.Software, error)
}

type softwareRepository struct {
	db Queryer
}

// NewSoftwareRepository builds the repository.
func NewSoftwareRepository(db Queryer) SoftwareRepository {
	return &softwareRepository{db: db}
}

func (r *softwareRepository) CreateType(ctx context.Context, swType *domain.SoftwareType) error {
	const query = `
        INSERT INTO software_types (name)
        VALUES ($1)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query, swType.Name).Scan(&swType.ID, &swType.CreatedAt, &swType.UpdatedAt)
}

func (r *softwareRepository) ListTypes(ctx context.Context) ([]domain.SoftwareType, error) {
	const query = `
        SELECT id, name, created_at, updated_at
        FROM software_types ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SoftwareType
	for rows.Next() {
		var swType domain.SoftwareType
		if err := rows.Scan(&swType.ID, &swType.Name, &swType.CreatedAt, &swType.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, swType)
	}
	return result, rows.Err()
}

func (r *softwareRepository) Create(ctx context.Context, software *domain.Software) error {
	const query = `
        INSERT INTO software (name, type_id)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		software.Name,
		software.TypeID,
	).Scan(&software.ID, &software.CreatedAt, &software.UpdatedAt)
}

func (r *softwareRepository) Update(ctx context.Context, software *domain.Software) error {
	const query = `
        UPDATE software SET name=$1, type_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.db.Exec(ctx, query, software.Name, software.TypeID, software.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *softwareRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM software WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *softwareRepository) GetByID(ctx context.Context, id int64) (*domain.Software, error) {
	const query = `
        SELECT id, name, type_id, created_at, updated_at
        FROM software WHERE id=$1`
	var software domain.Software
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&software.ID,
		&software.Name,
		&software.TypeID,
		&software.CreatedAt,
		&software.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &software, nil
}

func (r *softwareRepository) List(ctx context.Context, typeID *int64) ([]domain.Software, error) {
	query := `
        SELECT id, name, type_id, created_at, updated_at
        FROM software`
	args := []any{}
	if typeID != nil {
		query += ` WHERE type_id=$1`
		args = append(args, *typeID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Software
	for rows.Next() {
		var software domain.Software
		if err := rows.Scan(&software.ID, &software.Name, &software.TypeID, &software.CreatedAt, &software.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, software)
	}
	return result, rows.Err()
}

// namedLookup factors the CRUD shared by the simple id/name lookup tables.
type namedLookup struct {
	db    Queryer
	table string
}

type rowScanner func(dest ...any) error

func (l namedLookup) create(ctx context.Context, name string, id *int64, createdAt, updatedAt any) error {
	query := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) RETURNING id, created_at, updated_at`, l.table)
	return l.db.QueryRow(ctx, query, name).Scan(id, createdAt, updatedAt)
}

func (l namedLookup) update(ctx context.Context, id int64, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET name=$1, updated_at=NOW() WHERE id=$2`, l.table)
	cmd, err := l.db.Exec(ctx, query, name, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (l namedLookup) delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, l.table)
	cmd, err := l.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (l namedLookup) get(ctx context.Context, id int64, dest ...any) error {
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE id=$1`, l.table)
	return l.db.QueryRow(ctx, query, id).Scan(dest...)
}

func (l namedLookup) list(ctx context.Context, each func(rowScanner) error) error {
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s ORDER BY name ASC`, l.table)
	rows, err := l.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows.Scan); err != nil {
			return err
		}
	}
	return rows.Err()
}
