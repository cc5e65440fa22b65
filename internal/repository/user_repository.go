package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/domain"
)

// UserFilter defines query params for user listing.
type UserFilter struct {
	Role      *string
	CompanyID *int64
	Active    *bool
	Limit     int
	Offset    int
}

// UserRepository handles persistence for staff members and client contacts,
// including role membership.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	SetRoles(ctx context.Context, userID int64, roles []string) error
	HasRole(ctx context.Context, userID int64, role string) (bool, error)
	ListEmailsByRoles(ctx context.Context, roles []string) ([]string, error)
}

type userRepository struct {
	db Queryer
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db Queryer) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, email, phone, password_hash, company_id, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := r.db.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.CompanyID,
		user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}
	if len(user.Roles) > 0 {
		return r.SetRoles(ctx, user.ID, user.Roles)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users
        SET first_name=$1, last_name=$2, email=$3, phone=$4, password_hash=$5,
            company_id=$6, active_flag=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db.Exec(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.CompanyID,
		user.Active,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a user. Ticket references (technician, escalated_to,
// requester) are nullified by the schema, never cascaded.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `
        SELECT id, first_name, last_name, email, phone, password_hash, company_id, active_flag, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, first_name, last_name, email, phone, password_hash, company_id, active_flag, created_at, updated_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.CompanyID,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	roles, err := r.rolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `
        SELECT u.id, u.first_name, u.last_name, u.email, u.phone, u.password_hash,
               u.company_id, u.active_flag, u.created_at, u.updated_at
        FROM users u`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		query += ` JOIN user_roles ur ON ur.user_id = u.id JOIN roles ro ON ro.id = ur.role_id`
		clauses = append(clauses, fmt.Sprintf("ro.name=$%d", len(args)))
	}
	if filter.CompanyID != nil {
		args = append(args, *filter.CompanyID)
		clauses = append(clauses, fmt.Sprintf("u.company_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("u.active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY u.created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Phone,
			&user.PasswordHash,
			&user.CompanyID,
			&user.Active,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		roles, err := r.rolesOf(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Roles = roles
	}
	return result, nil
}

// SetRoles replaces a user's role memberships. Unknown role names are
// created on the fly, matching the original seeding behavior.
func (r *userRepository) SetRoles(ctx context.Context, userID int64, roles []string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id=$1`, userID); err != nil {
		return err
	}
	for _, role := range roles {
		const query = `
            WITH existing AS (
                INSERT INTO roles (name) VALUES ($1)
                ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
                RETURNING id
            )
            INSERT INTO user_roles (user_id, role_id)
            SELECT $2, id FROM existing
            ON CONFLICT DO NOTHING`
		if _, err := r.db.Exec(ctx, query, role, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *userRepository) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM user_roles ur
            JOIN roles ro ON ro.id = ur.role_id
            WHERE ur.user_id=$1 AND ro.name=$2
        )`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, role).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListEmailsByRoles returns the distinct addresses of users holding any of
// the given roles; used for recipient resolution.
func (r *userRepository) ListEmailsByRoles(ctx context.Context, roles []string) ([]string, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roles))
	args := make([]any, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := fmt.Sprintf(`
        SELECT DISTINCT u.email FROM users u
        JOIN user_roles ur ON ur.user_id = u.id
        JOIN roles ro ON ro.id = ur.role_id
        WHERE ro.name IN (%s) AND u.active_flag = TRUE
        ORDER BY u.email`, strings.Join(placeholders, ","))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		result = append(result, email)
	}
	return result, rows.Err()
}

func (r *userRepository) rolesOf(ctx context.Context, userID int64) ([]string, error) {
	const query = `
        SELECT ro.name FROM user_roles ur
        JOIN roles ro ON ro.id = ur.role_id
        WHERE ur.user_id=$1 ORDER BY ro.name`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}
