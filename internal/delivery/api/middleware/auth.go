// Package middleware holds the API-only echo middleware.
package middleware

import (
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"coursecraft/internal/delivery/api/response"
	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	ShellUC      usecase.ShellUsecase
}

// AuthMiddleware authenticates bearer tokens against the live shell session.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	shellUC  usecase.ShellUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: params.TokenService, shellUC: params.ShellUC}
}

// Authenticate validates the access token and checks that the session it was
// issued to is still signed in as the same user. Logging out therefore
// revokes every token of the session.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "MISSING_TOKEN", "Authorization header is missing")
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid token format, must be Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(tokenString)
		if err != nil {
			return response.Unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
		}

		if _, err := m.shellUC.Authorize(c.Request().Context(), claims.SessionID, claims.UserID); err != nil {
			return err
		}

		deliverycontext.SetIdentity(c, deliverycontext.Identity{
			UserID:    claims.UserID,
			Role:      claims.Role,
			SessionID: claims.SessionID,
		})

		return next(c)
	}
}

// RequireRole allows only the listed roles. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := deliverycontext.GetIdentity(c)
			if !ok {
				return domainerrors.ErrUnauthenticated
			}
			if !slices.Contains(roles, id.Role) {
				return domainerrors.ErrForbidden.WithDetails("role " + string(id.Role) + " not allowed")
			}

			return next(c)
		}
	}
}

// MustIdentity returns the caller set by Authenticate.
func MustIdentity(c echo.Context) (deliverycontext.Identity, error) {
	id, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return deliverycontext.Identity{}, domainerrors.ErrUnauthenticated
	}

	return id, nil
}
