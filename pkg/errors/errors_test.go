package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Clone(ErrNotFound, "draft not found"))
	appErr := FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "draft not found", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, errors.Is(appErr, sql.ErrConnDone))
	assert.Nil(t, FromError(nil))
}

func TestClonesMatchPredefined(t *testing.T) {
	assert.True(t, errors.Is(Clone(ErrConflict, "name taken"), ErrConflict))
	assert.False(t, errors.Is(Clone(ErrConflict, ""), ErrNotFound))
	assert.Equal(t, "conflict", ErrConflict.Message, "clone must not mutate the original")
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrValidation, map[string]string{"name": "required"})
	assert.Equal(t, map[string]string{"name": "required"}, err.Details)
	assert.Nil(t, ErrValidation.Details)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "failed: boom", Wrap(errors.New("boom"), "X", 500, "failed").Error())
	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}
