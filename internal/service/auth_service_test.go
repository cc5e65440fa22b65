package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techexpert/helpdesk/internal/auth"
	"github.com/techexpert/helpdesk/internal/domain"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	hash, err := auth.HashPassword("s3cret", 4)
	require.NoError(t, err)
	users.add(domain.User{
		FirstName: "Sara", LastName: "Super",
		Email: "sara@techexpert.example", PasswordHash: hash,
		Active: true, Roles: []string{domain.RoleSupervisor},
	})
	hash2, err := auth.HashPassword("s3cret", 4)
	require.NoError(t, err)
	users.add(domain.User{
		FirstName: "Gil", LastName: "Gone",
		Email: "gil@techexpert.example", PasswordHash: hash2,
		Active: false,
	})
	return NewAuthService(users, auth.NewTokenManager("test-secret", 30)), users
}

func TestLoginIssuesToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	result, err := svc.Login(context.Background(), "Sara@TechExpert.example", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "sara@techexpert.example", result.User.Email)

	claims, err := auth.NewTokenManager("test-secret", 30).ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Contains(t, claims.Roles, domain.RoleSupervisor)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newAuthFixture(t)

	for name, attempt := range map[string][2]string{
		"unknown email":  {"nobody@techexpert.example", "s3cret"},
		"wrong password": {"sara@techexpert.example", "nope"},
		"inactive user":  {"gil@techexpert.example", "s3cret"},
	} {
		_, err := svc.Login(context.Background(), attempt[0], attempt[1])
		require.Error(t, err, name)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized), name)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), "", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}
