package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/auth"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/repository"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// UserService manages staff accounts and role assignments.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserInput describes user creation and update payloads.
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	CompanyID *int64
	Active    *bool
	Roles     []string
}

func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

func (s *UserService) Create(ctx context.Context, input UserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.FirstName == "" || input.LastName == "" {
		return nil, apperrors.NewValidationError("first_name, last_name and email required", nil)
	}
	if input.Password == "" {
		return nil, apperrors.NewValidationError("password required", nil)
	}
	if err := validateRoles(input.Roles); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	user := &domain.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		CompanyID:    input.CompanyID,
		Active:       active,
		Roles:        input.Roles,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, input UserInput) (*domain.User, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateRoles(input.Roles); err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = strings.TrimSpace(input.FirstName)
	}
	if input.LastName != "" {
		user.LastName = strings.TrimSpace(input.LastName)
	}
	if input.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	}
	if input.Phone != "" {
		user.Phone = strings.TrimSpace(input.Phone)
	}
	if input.CompanyID != nil {
		user.CompanyID = input.CompanyID
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, apperrors.MapError(err)
	}
	if input.Roles != nil {
		if err := s.users.SetRoles(ctx, user.ID, input.Roles); err != nil {
			return nil, apperrors.MapError(err)
		}
		user.Roles = input.Roles
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.get(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func (s *UserService) get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func validateRoles(roles []string) error {
	for _, role := range roles {
		if domain.CapabilitiesForRole(role) == nil {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": role})
		}
	}
	return nil
}
