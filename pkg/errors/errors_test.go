package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewFieldError("location", "обязательное поле"), http.StatusBadRequest},
		{"not found wrapped", fmt.Errorf("заявка 7: %w", ErrNotFound), http.StatusNotFound},
		{"conflict", NewConflictError("этап %d", 6), http.StatusConflict},
		{"storage", NewStorageError("commit", errors.New("conn reset")), http.StatusInternalServerError},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"no actor", ErrActorNotFoundInContext, http.StatusUnauthorized},
		{"http error", NewHttpError(http.StatusTeapot, "чай", nil, nil), http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusCode(tc.err))
		})
	}
}

func TestValidationError_MessageIsStable(t *testing.T) {
	err := NewValidationError("ошибка валидации", map[string]string{
		"location":   "обязательное поле",
		"department": "обязательное поле",
	})
	assert.Equal(t, "ошибка валидации (department: обязательное поле; location: обязательное поле)", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(fmt.Errorf("create: %w", err), &ve))
	assert.Len(t, ve.Fields, 2)
}

func TestStorageError_Unwraps(t *testing.T) {
	base := errors.New("deadlock detected")
	err := NewStorageError("recordClosure", base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "recordClosure")
}
