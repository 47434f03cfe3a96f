package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesKind(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Wrap(ErrNotificationFailed, cause)

	assert.ErrorIs(t, err, ErrNotificationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, ErrNotificationFailed.Message, err.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidCredentials, ErrInvalidCredentials)
	assert.NotErrorIs(t, ErrInvalidCredentials, ErrTokenExpired)

	// survives an extra fmt wrap too
	wrapped := fmt.Errorf("login: %w", ErrInvalidCredentials)
	assert.ErrorIs(t, wrapped, ErrInvalidCredentials)
}

func TestErrorsAsExtractsKind(t *testing.T) {
	var ae *Error
	err := fmt.Errorf("handler: %w", Wrap(ErrForbidden, nil))
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, "forbidden", ae.Code)
}

func TestStorageHidesDetail(t *testing.T) {
	err := Storage(errors.New("pq: relation does not exist"))

	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	// client-facing message carries no adapter detail
	assert.Equal(t, "something went wrong", err.Message)
	// operator-facing string does
	assert.Contains(t, err.Error(), "pq: relation does not exist")
}
