package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUntypedErrors(t *testing.T) {
	err := FromError(sql.ErrConnDone)
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrNotFound, "event not found"))
	err := FromError(wrapped)
	assert.Equal(t, "event not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
}

func TestIsMatchesByCode(t *testing.T) {
	clone := Clone(ErrTimetableConflict, "classroom already booked")
	assert.True(t, errors.Is(clone, ErrTimetableConflict))
	assert.False(t, errors.Is(clone, ErrConflict))

	withDetails := WithDetails(clone, map[string]string{"id": "e1"})
	assert.True(t, errors.Is(withDetails, ErrTimetableConflict))
	assert.Equal(t, "classroom already booked", withDetails.Error())
}
