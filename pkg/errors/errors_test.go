package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	typed := Clone(ErrGuardRejected, "Acceptance fee has not been paid")
	wrapped := fmt.Errorf("migrate: %w", typed)

	got := FromError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "GUARD_REJECTED", got.Code)
	assert.Equal(t, "Acceptance fee has not been paid", got.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(errors.New("boom"))
	require.NotNil(t, got)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestClonedErrorsMatchByCode(t *testing.T) {
	clone := Clone(ErrNotFound, "applicant not found")
	assert.True(t, errors.Is(clone, ErrNotFound))
	assert.False(t, errors.Is(clone, ErrConflict))
}

func TestTransitionFailedHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := TransitionFailed(cause)
	assert.Equal(t, ErrTransitionFailed.Message, err.Message)
	assert.ErrorIs(t, err, cause)
}
