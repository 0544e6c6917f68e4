package impl

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
	"golang.org/x/crypto/bcrypt"

	"coursecraft/config"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/infra/auth"
	"coursecraft/internal/infra/blobstore"
	"coursecraft/internal/infra/persistence/memory"
)

const (
	seedCreatorID   = "creator-01"
	seedAffiliateID = "affiliate-01"
	seedReferral    = "sam-promo"
	seedPassword    = "password123"
)

// mockGenerator is a testify mock of service.ContentGenerator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Available() bool {
	return m.Called().Bool(0)
}

func (m *mockGenerator) GenerateDescription(ctx context.Context, title string, productType entity.ProductType, keywords string) (string, error) {
	args := m.Called(ctx, title, productType, keywords)

	return args.String(0), args.Error(1)
}

func (m *mockGenerator) GenerateImage(ctx context.Context, prompt string, ratio entity.AspectRatio) (*service.GeneratedImage, error) {
	args := m.Called(ctx, prompt, ratio)
	if img, ok := args.Get(0).(*service.GeneratedImage); ok {
		return img, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockGenerator) GenerateCertificateTheme(ctx context.Context, prompt string) (entity.CertificateDesign, error) {
	args := m.Called(ctx, prompt)

	return args.Get(0).(entity.CertificateDesign), args.Error(1)
}

func (m *mockGenerator) GenerateLandingPage(ctx context.Context, prompt, creatorName string, products []*entity.Product) (*service.GeneratedPage, error) {
	args := m.Called(ctx, prompt, creatorName, products)
	if page, ok := args.Get(0).(*service.GeneratedPage); ok {
		return page, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockGenerator) SendChatMessage(ctx context.Context, history []service.ChatTurn, message string) (string, error) {
	args := m.Called(ctx, history, message)

	return args.String(0), args.Error(1)
}

// mockPublisher is a testify mock of service.EventPublisher that accepts
// every event unless told otherwise.
type mockPublisher struct {
	mock.Mock
}

func newMockPublisher() *mockPublisher {
	p := &mockPublisher{}
	p.On("PublishStoreEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	return p
}

func (m *mockPublisher) PublishStoreEvent(ctx context.Context, event *service.StoreEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error {
	return m.Called().Error(0)
}

// events returns the published events of type t in publish order.
func (m *mockPublisher) events(t service.StoreEventType) []*service.StoreEvent {
	var out []*service.StoreEvent
	for _, c := range m.Calls {
		if c.Method != "PublishStoreEvent" {
			continue
		}
		if e, ok := c.Arguments.Get(1).(*service.StoreEvent); ok && e.Type == t {
			out = append(out, e)
		}
	}

	return out
}

// testEnv wires the services against the seeded in-memory store.
type testEnv struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *memory.DB
	txManager repository.TransactionManager

	users         repository.UserRepository
	products      repository.ProductRepository
	sales         repository.SaleRepository
	affiliates    repository.AffiliateRepository
	notifications repository.NotificationRepository
	progress      repository.ProgressRepository
	sessions      repository.SessionRepository
	templates     repository.TemplateRepository

	hasher    service.PasswordHasher
	objects   service.ObjectStore
	generator *mockGenerator
	publisher *mockPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Auth:      &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Store:     &config.StoreConfig{BaseURL: "https://course-craft.com"},
		Analytics: &config.AnalyticsConfig{CurrencyWeights: map[string]float64{"USD": 1, "NGN": 1}},
	}
	hasher := auth.NewBcryptHasher(cfg)

	db, err := memory.NewDB(memory.Params{Hasher: hasher, Logger: logger})
	require.NoError(t, err)

	templates, err := memory.NewTemplateRepository()
	require.NoError(t, err)

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	return &testEnv{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		txManager:     memory.NewTransactionManager(db),
		users:         memory.NewUserRepository(db),
		products:      memory.NewProductRepository(db),
		sales:         memory.NewSaleRepository(db),
		affiliates:    memory.NewAffiliateRepository(db),
		notifications: memory.NewNotificationRepository(db),
		progress:      memory.NewProgressRepository(db),
		sessions:      memory.NewSessionRepository(db),
		templates:     templates,
		hasher:        hasher,
		objects:       blobstore.New(bucket, "/uploads", logger),
		generator:     &mockGenerator{},
		publisher:     newMockPublisher(),
	}
}

// addStudent registers a student account for tests that need a clean buyer.
func (e *testEnv) addStudent(t *testing.T, id string) *entity.User {
	t.Helper()

	u := &entity.User{ID: id, Name: "Student " + id, Email: id + "@example.com", Role: entity.RoleStudent}
	require.NoError(t, e.users.Create(context.Background(), u))

	return u
}

// addProduct stores a product owned by creatorID.
func (e *testEnv) addProduct(t *testing.T, p *entity.Product) *entity.Product {
	t.Helper()

	if p.Currency == "" {
		p.Currency = entity.CurrencyUSD
	}
	require.NoError(t, e.products.Upsert(context.Background(), p))

	return p
}

func (e *testEnv) buy(t *testing.T, studentID string, p *entity.Product) {
	t.Helper()

	require.NoError(t, e.sales.Create(context.Background(), entity.Sale{
		ID:        entity.NewID(),
		CreatorID: p.CreatorID,
		ProductID: p.ID,
		StudentID: studentID,
		Amount:    p.Price,
		Currency:  p.Currency,
	}))
}

// pngBytes encodes a solid w x h image.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// appMessage returns the user-facing message carried by err.
func appMessage(t *testing.T, err error) string {
	t.Helper()

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "not an application error: %v", err)

	return appErr.Message()
}
