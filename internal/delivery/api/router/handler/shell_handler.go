package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/response"
	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/shell"
	"coursecraft/internal/usecase"
)

// ShellHandlerParams holds dependencies for ShellHandler, injected by Fx.
type ShellHandlerParams struct {
	fx.In

	ShellUC usecase.ShellUsecase
	Logger  *slog.Logger
}

// ShellHandler exposes the navigation state machine and account commands.
type ShellHandler struct {
	shellUC usecase.ShellUsecase
	logger  *slog.Logger
}

// NewShellHandler is the constructor for ShellHandler.
func NewShellHandler(params ShellHandlerParams) *ShellHandler {
	return &ShellHandler{
		shellUC: params.ShellUC,
		logger:  params.Logger,
	}
}

// CredentialsRequest is the body of sign-in and sign-up.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OnboardingRequest names a new creator.
type OnboardingRequest struct {
	Name string `json:"name"`
}

// NavigateRequest selects a view.
type NavigateRequest struct {
	View shell.View `json:"view" validate:"required"`
}

// MeResponse is the signed-in user with their session.
type MeResponse struct {
	User    *entity.User   `json:"user"`
	Session *shell.Session `json:"session"`
}

// CreateSession starts a new client session on the home page.
func (h *ShellHandler) CreateSession(c echo.Context) error {
	s, err := h.shellUC.CreateSession(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, s)
}

func (h *ShellHandler) GetSession(c echo.Context) error {
	s, err := h.shellUC.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

func (h *ShellHandler) GoToAuth(c echo.Context) error {
	s, err := h.shellUC.GoToAuth(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

func (h *ShellHandler) BackToHome(c echo.Context) error {
	s, err := h.shellUC.BackToHome(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

// SignIn handles the sign-in form.
func (h *ShellHandler) SignIn(c echo.Context) error {
	var req CredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.shellUC.SignIn(c.Request().Context(), c.Param("id"), req.Email, req.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result)
}

// SignUp registers a creator account.
func (h *ShellHandler) SignUp(c echo.Context) error {
	var req CredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.shellUC.SignUp(c.Request().Context(), c.Param("id"), req.Email, req.Password)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, result)
}

// Me returns the caller and their session.
func (h *ShellHandler) Me(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.shellUC.CurrentUser(ctx, id.UserID)
	if err != nil {
		return errors.WithStack(err)
	}
	s, err := h.shellUC.GetSession(ctx, id.SessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, MeResponse{User: user, Session: s})
}

func (h *ShellHandler) CompleteOnboarding(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req OnboardingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	s, err := h.shellUC.CompleteOnboarding(c.Request().Context(), id.SessionID, id.UserID, req.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

func (h *ShellHandler) Logout(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	s, err := h.shellUC.Logout(c.Request().Context(), id.SessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

func (h *ShellHandler) Navigate(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	var req NavigateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	s, err := h.shellUC.Navigate(c.Request().Context(), id.SessionID, req.View)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

func (h *ShellHandler) OpenCourse(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	s, err := h.shellUC.OpenCourse(c.Request().Context(), id.SessionID, id.UserID, c.Param("productId"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}

func (h *ShellHandler) CloseCourse(c echo.Context) error {
	id, err := middleware.MustIdentity(c)
	if err != nil {
		return err
	}

	s, err := h.shellUC.CloseCourse(c.Request().Context(), id.SessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, s)
}
