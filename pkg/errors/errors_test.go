package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypePredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFoundError("consumer")))
	assert.True(t, IsValidation(NewValidationError("bad input")))
	assert.True(t, IsConflict(NewConflictError("duplicate")))
	assert.True(t, IsUnavailable(NewUnavailableError("redis")))
	assert.True(t, IsUnsupportedUseCase(NewUnsupportedUseCaseError("payments")))

	assert.False(t, IsNotFound(NewConflictError("duplicate")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewUnavailableError("redis")))
	assert.True(t, IsRetryable(NewTimeoutError("lookup")))
	assert.False(t, IsRetryable(NewValidationError("bad input")))
	assert.False(t, IsRetryable(NewConflictError("duplicate")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NewNotFoundError("consumer")
	wrapped := fmt.Errorf("loading profile: %w", inner)

	assert.True(t, IsNotFound(wrapped))
	require.NotNil(t, GetAppError(wrapped))
	assert.Equal(t, ErrorTypeNotFound, GetAppError(wrapped).Type)
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUnavailableError("consumer store").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	appErr := Wrap(NewNotFoundError("consumer"), "loading profile")
	assert.True(t, IsNotFound(appErr))
	assert.Contains(t, appErr.Error(), "loading profile")

	plain := Wrap(errors.New("boom"), "saving")
	assert.True(t, IsType(plain, ErrorTypeInternal))
}
