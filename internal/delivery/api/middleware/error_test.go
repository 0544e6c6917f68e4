package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/internal/delivery/api/response"
	domainerrors "coursecraft/internal/domain/errors"
)

func TestHandleHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		errCode string
		message string
		details any
	}{
		{
			name:    "application error",
			err:     errors.WithStack(domainerrors.ErrProductNotFound),
			code:    http.StatusNotFound,
			errCode: domainerrors.ErrProductNotFound.ErrorCode(),
			message: domainerrors.ErrProductNotFound.Message(),
		},
		{
			name: "validation error",
			err: domainerrors.NewValidationError(domainerrors.ErrValidationFailed, map[string]string{
				"email": "email",
			}),
			code:    http.StatusBadRequest,
			errCode: "VALIDATION_FAILED",
			message: domainerrors.ErrValidationFailed.Message(),
			details: map[string]any{"email": "email"},
		},
		{
			name:    "echo error",
			err:     echo.NewHTTPError(http.StatusBadRequest, "Invalid request body"),
			code:    http.StatusBadRequest,
			errCode: "HTTP_ERROR",
			message: "Invalid request body",
		},
		{
			name:    "unknown error",
			err:     errors.New("disk on fire"),
			code:    http.StatusInternalServerError,
			errCode: "INTERNAL_ERROR",
			message: "Internal server error, please try again later",
		},
	}

	m := NewErrorMiddleware(slog.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			m.HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
					Details any    `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.errCode, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			assert.Equal(t, tt.details, body.Error.Details)
			assert.NotContains(t, rec.Body.String(), "disk on fire")
		})
	}
}

func TestHandleHTTPError_Committed(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, response.Success(c, http.StatusOK, "done"))

	NewErrorMiddleware(slog.Default()).HandleHTTPError(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "INTERNAL_ERROR")
}
