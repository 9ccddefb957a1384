package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "maintenance-system/pkg/errors"
)

func TestParseFilterFromQuery(t *testing.T) {
	q, err := url.ParseQuery("limit=1000&page=3&sort[created_at]=DESC&sort[id]=up&filter[current_step]=4&filter[current_step]=5")
	require.NoError(t, err)

	f := ParseFilterFromQuery(q)

	assert.Equal(t, MaxLimit, f.Limit)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 2*MaxLimit, f.Offset)
	assert.True(t, f.WithPagination)
	assert.Equal(t, map[string]string{"created_at": "desc"}, f.Sort)
	assert.Equal(t, "4,5", f.Filter["current_step"])
}

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		err     error
		code    int
		message string
	}{
		{apperrors.NewFieldError("form.location", "обязательное поле"), http.StatusBadRequest, "ошибка валидации"},
		{apperrors.NewConflictError("closed"), http.StatusConflict, ""},
		{fmt.Errorf("wrap: %w", apperrors.ErrNotFound), http.StatusNotFound, ""},
		{apperrors.NewStorageError("commit", fmt.Errorf("conn reset")), http.StatusInternalServerError, "Внутренняя ошибка сервера"},
	}

	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		require.NoError(t, ErrorResponse(c, tc.err, zap.NewNop()))
		assert.Equal(t, tc.code, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["status"])
		if tc.message != "" {
			assert.Equal(t, tc.message, body["message"])
		}
	}
}
