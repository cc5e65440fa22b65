package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidTransitionCarriesEndpoints(t *testing.T) {
	err := NewInvalidTransition("CLOSED", "ESCALATED")
	domainErr := ToDomainError(err)
	assert.Equal(t, CodeInvalidTransition, domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)
	assert.Equal(t, "CLOSED", domainErr.Details["from"])
	assert.Equal(t, "ESCALATED", domainErr.Details["to"])
}

func TestTokenNotFoundDoesNotLeakDetail(t *testing.T) {
	err := NewTokenNotFound()
	domainErr := ToDomainError(err)
	assert.Equal(t, CodeTokenNotFound, domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
	assert.Empty(t, domainErr.Details)
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	domainErr := ToDomainError(fmt.Errorf("load ticket: %w", pgx.ErrNoRows))
	assert.Equal(t, CodeNotFound, domainErr.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	domainErr := ToDomainError(cause)
	require.Equal(t, CodeInternal, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, domainErr, cause)
}

func TestIsCodeUnwraps(t *testing.T) {
	err := fmt.Errorf("escalate: %w", NewDuplicateEscalation(7))
	assert.True(t, IsCode(err, CodeDuplicateEscalation))
	assert.False(t, IsCode(err, CodeAlreadyClosed))
	assert.False(t, IsCode(nil, CodeAlreadyClosed))
}
