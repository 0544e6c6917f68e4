package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecraft/config"
	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/domain/shell"
	"coursecraft/internal/infra/auth"
	"coursecraft/internal/usecase"
)

// stubShell answers Authorize from a fixed table of live sessions.
type stubShell struct {
	usecase.ShellUsecase

	live map[string]string // session id to signed-in user id
}

func (s *stubShell) Authorize(_ context.Context, sessionID, userID string) (*shell.Session, error) {
	if s.live[sessionID] != userID {
		return nil, domainerrors.ErrUnauthenticated
	}

	return &shell.Session{ID: sessionID}, nil
}

func newTestAuth(t *testing.T) (*AuthMiddleware, service.TokenService) {
	t.Helper()

	cfg := &config.Config{Auth: &config.AuthConfig{TokenTTL: time.Hour}}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	return NewAuthMiddleware(AuthMiddlewareParams{
		TokenService: tokens,
		ShellUC:      &stubShell{live: map[string]string{"s-1": "creator-01"}},
	}), tokens
}

func newAuthContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestAuthenticate(t *testing.T) {
	m, tokens := newTestAuth(t)

	token, err := tokens.GenerateAccessToken("creator-01", entity.RoleCreator, "s-1")
	require.NoError(t, err)

	c, _ := newAuthContext("Bearer " + token)

	var got deliverycontext.Identity
	err = m.Authenticate(func(c echo.Context) error {
		got, err = MustIdentity(c)

		return err
	})(c)
	require.NoError(t, err)
	assert.Equal(t, "creator-01", got.UserID)
	assert.Equal(t, entity.RoleCreator, got.Role)
	assert.Equal(t, "s-1", got.SessionID)
}

func TestAuthenticate_Rejected(t *testing.T) {
	m, tokens := newTestAuth(t)

	stale, err := tokens.GenerateAccessToken("creator-01", entity.RoleCreator, "s-old")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		code    int
		wantErr error
	}{
		{name: "missing header", header: "", code: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc", code: http.StatusUnauthorized},
		{name: "signed out session", header: "Bearer " + stale, wantErr: domainerrors.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAuthContext(tt.header)

			called := false
			err := m.Authenticate(func(echo.Context) error {
				called = true

				return nil
			})(c)

			assert.False(t, called)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	m, _ := newTestAuth(t)
	next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	creatorOnly := m.RequireRole(entity.RoleCreator)

	c, rec := newAuthContext("")
	deliverycontext.SetIdentity(c, deliverycontext.Identity{UserID: "creator-01", Role: entity.RoleCreator})
	require.NoError(t, creatorOnly(next)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, _ = newAuthContext("")
	deliverycontext.SetIdentity(c, deliverycontext.Identity{UserID: "student-01", Role: entity.RoleStudent})
	assert.ErrorIs(t, creatorOnly(next)(c), domainerrors.ErrForbidden)

	c, _ = newAuthContext("")
	assert.ErrorIs(t, creatorOnly(next)(c), domainerrors.ErrUnauthenticated)
}
