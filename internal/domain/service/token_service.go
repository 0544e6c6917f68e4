package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"coursecraft/internal/domain/entity"
)

// Claims defines the custom claims of an access token. A token is only good
// for the shell session it was issued to.
type Claims struct {
	UserID    string      `json:"sub"`
	Role      entity.Role `json:"role"`
	SessionID string      `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating JWTs.
type TokenService interface {
	// GenerateAccessToken issues a token for a user signed in on a session.
	GenerateAccessToken(userID string, role entity.Role, sessionID string) (string, error)

	// ValidateToken checks the signature and expiry of a token string.
	ValidateToken(tokenString string) (*Claims, error)

	// TokenTTL returns how long issued tokens stay valid.
	TokenTTL() time.Duration
}
