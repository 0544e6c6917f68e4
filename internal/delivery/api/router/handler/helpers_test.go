package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	apimiddleware "coursecraft/internal/delivery/api/middleware"
	"coursecraft/internal/delivery/api/validator"
	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/usecase"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestEcho builds an echo instance configured like the API server.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(testLogger).HandleHTTPError

	return e
}

// as stands in for Authenticate.
func as(userID string, role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deliverycontext.SetIdentity(c, deliverycontext.Identity{UserID: userID, Role: role, SessionID: "s-1"})

			return next(c)
		}
	}
}

type mockStorefront struct {
	mock.Mock
}

func (m *mockStorefront) RenderStore(ctx context.Context, w io.Writer, creatorID string) error {
	args := m.Called(ctx, w, creatorID)
	if html := args.String(0); html != "" {
		_, _ = io.WriteString(w, html)
	}

	return args.Error(1)
}

func (m *mockStorefront) RenderProduct(ctx context.Context, w io.Writer, creatorID, productID string) error {
	args := m.Called(ctx, w, creatorID, productID)
	if html := args.String(0); html != "" {
		_, _ = io.WriteString(w, html)
	}

	return args.Error(1)
}

func (m *mockStorefront) OpenUpload(ctx context.Context, key string) (io.ReadCloser, *service.ObjectInfo, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	info, _ := args.Get(1).(*service.ObjectInfo)

	return rc, info, args.Error(2)
}

type mockAffiliate struct {
	mock.Mock
}

func (m *mockAffiliate) Dashboard(ctx context.Context, affiliateUserID string) (*usecase.AffiliateDashboard, error) {
	args := m.Called(ctx, affiliateUserID)
	dash, _ := args.Get(0).(*usecase.AffiliateDashboard)

	return dash, args.Error(1)
}

func (m *mockAffiliate) CreateLink(ctx context.Context, affiliateUserID, creatorID, productID string) (*usecase.AffiliateLink, error) {
	args := m.Called(ctx, affiliateUserID, creatorID, productID)
	link, _ := args.Get(0).(*usecase.AffiliateLink)

	return link, args.Error(1)
}

func (m *mockAffiliate) LinkQRCode(ctx context.Context, affiliateUserID, creatorID, productID string) ([]byte, error) {
	args := m.Called(ctx, affiliateUserID, creatorID, productID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

func (m *mockAffiliate) TrackClick(ctx context.Context, referralCode, creatorID, productID string) error {
	return m.Called(ctx, referralCode, creatorID, productID).Error(0)
}

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) List(ctx context.Context, userID string) ([]usecase.LibraryItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]usecase.LibraryItem)

	return items, args.Error(1)
}

func (m *mockLibrary) Course(ctx context.Context, userID, productID string) (*usecase.CourseView, error) {
	args := m.Called(ctx, userID, productID)
	view, _ := args.Get(0).(*usecase.CourseView)

	return view, args.Error(1)
}

func (m *mockLibrary) CompleteLesson(ctx context.Context, userID, productID, lessonID string) (*usecase.CourseView, error) {
	args := m.Called(ctx, userID, productID, lessonID)
	view, _ := args.Get(0).(*usecase.CourseView)

	return view, args.Error(1)
}

func (m *mockLibrary) Certificate(ctx context.Context, userID, productID string) ([]byte, error) {
	args := m.Called(ctx, userID, productID)
	png, _ := args.Get(0).([]byte)

	return png, args.Error(1)
}

func (m *mockLibrary) AddReview(ctx context.Context, userID, productID string, input usecase.ReviewInput) (*entity.Review, error) {
	args := m.Called(ctx, userID, productID, input)
	review, _ := args.Get(0).(*entity.Review)

	return review, args.Error(1)
}

func (m *mockLibrary) ClaimFree(ctx context.Context, userID, productID, referralCode string) (*entity.Sale, error) {
	args := m.Called(ctx, userID, productID, referralCode)
	sale, _ := args.Get(0).(*entity.Sale)

	return sale, args.Error(1)
}
