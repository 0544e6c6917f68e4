// Package shell is the top-level navigation state of one client: which page
// is shown, who is signed in and which dashboard view is active.
package shell

import (
	"time"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
)

// Page is the top-level screen.
type Page string

const (
	PageHome       Page = "home"
	PageAuth       Page = "auth"
	PageOnboarding Page = "onboarding"
	PageApp        Page = "app"
)

// View is the active sub-view inside the app page.
type View string

const (
	ViewDashboard          View = "dashboard"
	ViewProducts           View = "products"
	ViewStudents           View = "students"
	ViewMarketing          View = "marketing"
	ViewSettings           View = "settings"
	ViewSiteEditor         View = "site_editor"
	ViewStorefront         View = "storefront"
	ViewStudentLibrary     View = "student_library"
	ViewAffiliateDashboard View = "affiliate_dashboard"
	ViewCoursePlayer       View = "course_player"
)

// IsValid checks if the View is known.
func (v View) IsValid() bool {
	switch v {
	case ViewDashboard, ViewProducts, ViewStudents, ViewMarketing, ViewSettings,
		ViewSiteEditor, ViewStorefront, ViewStudentLibrary, ViewAffiliateDashboard, ViewCoursePlayer:
		return true
	default:
		return false
	}
}

// HomeView returns the view a user lands on after entering the app.
func HomeView(role entity.Role) View {
	switch role {
	case entity.RoleStudent:
		return ViewStudentLibrary
	case entity.RoleAffiliate:
		return ViewAffiliateDashboard
	default:
		return ViewDashboard
	}
}

// creatorOnly lists views that need a creator profile.
var creatorOnly = map[View]bool{
	ViewDashboard:  true,
	ViewProducts:   true,
	ViewStudents:   true,
	ViewMarketing:  true,
	ViewSettings:   true,
	ViewSiteEditor: true,
	ViewStorefront: true,
}

// Session is the navigation state machine of one client.
type Session struct {
	ID                string      `json:"id"`
	Page              Page        `json:"page"`
	View              View        `json:"view,omitempty"`
	UserID            string      `json:"userId,omitempty"`
	Role              entity.Role `json:"role,omitempty"`
	SelectedProductID string      `json:"selectedProductId,omitempty"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// NewSession starts a client on the home page.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, Page: PageHome, UpdatedAt: now}
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

// GoToAuth opens the sign-in page from home.
func (s *Session) GoToAuth(now time.Time) error {
	if s.Page != PageHome && s.Page != PageAuth {
		return domainerrors.ErrInvalidTransition.WithDetails(string(s.Page) + " -> auth")
	}
	s.Page = PageAuth
	s.UpdatedAt = now

	return nil
}

// BackToHome leaves the sign-in page.
func (s *Session) BackToHome(now time.Time) error {
	if s.Page != PageAuth && s.Page != PageHome {
		return domainerrors.ErrInvalidTransition.WithDetails(string(s.Page) + " -> home")
	}
	s.Page = PageHome
	s.UpdatedAt = now

	return nil
}

// SignedIn records an existing user and enters the app at their home view.
func (s *Session) SignedIn(u *entity.User, now time.Time) error {
	if s.Page != PageAuth && s.Page != PageHome {
		return domainerrors.ErrInvalidTransition.WithDetails(string(s.Page) + " -> app")
	}
	s.UserID = u.ID
	s.Role = u.Role
	s.SelectedProductID = ""

	return s.enterApp(HomeView(u.Role), now)
}

// SignedUp records a new creator and moves to onboarding.
func (s *Session) SignedUp(u *entity.User, now time.Time) error {
	if s.Page != PageAuth && s.Page != PageHome {
		return domainerrors.ErrInvalidTransition.WithDetails(string(s.Page) + " -> onboarding")
	}
	s.UserID = u.ID
	s.Role = u.Role
	s.Page = PageOnboarding
	s.View = ""
	s.UpdatedAt = now

	return nil
}

// CompleteOnboarding enters the app after the new creator named themselves.
func (s *Session) CompleteOnboarding(now time.Time) error {
	if s.Page != PageOnboarding {
		return domainerrors.ErrInvalidTransition.WithDetails(string(s.Page) + " -> app")
	}

	return s.enterApp(ViewDashboard, now)
}

// Logout clears the user and returns home.
func (s *Session) Logout(now time.Time) {
	s.reset(now)
}

// Navigate switches the view inside the app.
func (s *Session) Navigate(v View, now time.Time) error {
	if !v.IsValid() {
		return domainerrors.ErrUnknownView.WithDetails(string(v))
	}
	if v == ViewCoursePlayer {
		return domainerrors.ErrValidationFailed.WithDetails("the course player needs a product; open a course instead")
	}
	if err := s.requireApp(now); err != nil {
		return err
	}
	if creatorOnly[v] && s.Role != entity.RoleCreator {
		return domainerrors.ErrForbidden.WithDetails(string(v))
	}

	s.View = v
	s.SelectedProductID = ""
	s.UpdatedAt = now

	return nil
}

// OpenCourse shows the course player for a product.
func (s *Session) OpenCourse(productID string, now time.Time) error {
	if err := s.requireApp(now); err != nil {
		return err
	}

	s.View = ViewCoursePlayer
	s.SelectedProductID = productID
	s.UpdatedAt = now

	return nil
}

// CloseCourse leaves the course player for the library.
func (s *Session) CloseCourse(now time.Time) error {
	if err := s.requireApp(now); err != nil {
		return err
	}

	s.View = ViewStudentLibrary
	s.SelectedProductID = ""
	s.UpdatedAt = now

	return nil
}

// enterApp is the only way into PageApp; without a user the session is reset.
func (s *Session) enterApp(v View, now time.Time) error {
	if !s.Authenticated() {
		s.reset(now)

		return domainerrors.ErrUnauthenticated
	}
	s.Page = PageApp
	s.View = v
	s.UpdatedAt = now

	return nil
}

// requireApp guards in-app transitions.
func (s *Session) requireApp(now time.Time) error {
	if !s.Authenticated() {
		s.reset(now)

		return domainerrors.ErrUnauthenticated
	}
	if s.Page != PageApp {
		return domainerrors.ErrInvalidTransition.WithDetails(string(s.Page) + " is not the app")
	}

	return nil
}

func (s *Session) reset(now time.Time) {
	s.Page = PageHome
	s.View = ""
	s.UserID = ""
	s.Role = ""
	s.SelectedProductID = ""
	s.UpdatedAt = now
}
