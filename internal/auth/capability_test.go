package auth

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/repository"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) Update(ctx context.Context, user *domain.User) error { return nil }
func (r *stubUserRepo) Delete(ctx context.Context, id int64) error          { return nil }

func (r *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) SetRoles(ctx context.Context, userID int64, roles []string) error {
	return nil
}

func (r *stubUserRepo) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	return false, nil
}

func (r *stubUserRepo) ListEmailsByRoles(ctx context.Context, roles []string) ([]string, error) {
	return nil, nil
}

func TestHasCapability(t *testing.T) {
	repo := &stubUserRepo{users: map[int64]*domain.User{
		1: {ID: 1, Active: true, Roles: []string{domain.RoleTechnician}},
		2: {ID: 2, Active: true, Roles: []string{domain.RoleSupervisor}},
		3: {ID: 3, Active: true, Roles: []string{domain.RoleAdministrator}},
		4: {ID: 4, Active: false, Roles: []string{domain.RoleAdministrator}},
		5: {ID: 5, Active: true},
	}}
	checker := NewCapabilityChecker(repo)
	ctx := context.Background()

	cases := []struct {
		name       string
		userID     int64
		capability domain.Capability
		want       bool
	}{
		{"technician can triage", 1, domain.CapabilityTriage, true},
		{"technician cannot supervise", 1, domain.CapabilitySupervise, false},
		{"supervisor can supervise", 2, domain.CapabilitySupervise, true},
		{"supervisor can triage", 2, domain.CapabilityTriage, true},
		{"administrator can administer", 3, domain.CapabilityAdminister, true},
		{"inactive user has nothing", 4, domain.CapabilityAdminister, false},
		{"user without roles has nothing", 5, domain.CapabilityTriage, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := checker.HasCapability(ctx, tc.userID, tc.capability)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHasCapabilityUnknownUser(t *testing.T) {
	checker := NewCapabilityChecker(&stubUserRepo{users: map[int64]*domain.User{}})
	_, err := checker.HasCapability(context.Background(), 99, domain.CapabilityTriage)
	assert.Error(t, err)
}
