// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/shell"
)

// AuthResult is returned after a successful sign-in or sign-up.
type AuthResult struct {
	Session     *shell.Session `json:"session"`
	User        *entity.User   `json:"user"`
	AccessToken string         `json:"accessToken"`
	ExpiresAt   time.Time      `json:"expiresAt"`
}

// WorkspaceCloser tears down the editing sessions a user left open.
type WorkspaceCloser interface {
	// CloseOwner abandons every session owned by ownerID, releasing its
	// uploads, and reports how many were closed.
	CloseOwner(ctx context.Context, ownerID string) int
}

// ShellUsecase drives the navigation state of one client and the named
// account commands behind it.
type ShellUsecase interface {
	CreateSession(ctx context.Context) (*shell.Session, error)
	GetSession(ctx context.Context, sessionID string) (*shell.Session, error)
	GoToAuth(ctx context.Context, sessionID string) (*shell.Session, error)
	BackToHome(ctx context.Context, sessionID string) (*shell.Session, error)

	// SignIn matches the email case-insensitively and checks the password.
	SignIn(ctx context.Context, sessionID, email, password string) (*AuthResult, error)

	// SignUp registers a new creator and moves the session to onboarding.
	SignUp(ctx context.Context, sessionID, email, password string) (*AuthResult, error)

	// CompleteOnboarding names the new creator and enters the app.
	CompleteOnboarding(ctx context.Context, sessionID, userID, name string) (*shell.Session, error)

	Logout(ctx context.Context, sessionID string) (*shell.Session, error)
	Navigate(ctx context.Context, sessionID string, view shell.View) (*shell.Session, error)

	// OpenCourse shows the course player for a product the user may view.
	OpenCourse(ctx context.Context, sessionID, userID, productID string) (*shell.Session, error)
	CloseCourse(ctx context.Context, sessionID string) (*shell.Session, error)

	// Authorize checks that the session still carries the user a token was issued for.
	Authorize(ctx context.Context, sessionID, userID string) (*shell.Session, error)

	// CurrentUser returns the signed-in user.
	CurrentUser(ctx context.Context, userID string) (*entity.User, error)
}
