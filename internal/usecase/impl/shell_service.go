package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/config"
	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/domain/service"
	"coursecraft/internal/domain/shell"
	"coursecraft/internal/usecase"
)

const newCreatorName = "New Creator"

// defaultTemplateID is the landing page given to new creators.
const defaultTemplateID = "default"

// shellService implements the ShellUsecase interface.
type shellService struct {
	txManager    repository.TransactionManager
	sessionRepo  repository.SessionRepository
	userRepo     repository.UserRepository
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	templateRepo repository.TemplateRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	drafts       usecase.WorkspaceCloser
	siteEditors  usecase.WorkspaceCloser
	latency      time.Duration
	locks        *keyedMutex
	now          func() time.Time
	logger       *slog.Logger
}

// ShellServiceParams holds dependencies for ShellService, injected by Fx.
type ShellServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	SessionRepo  repository.SessionRepository
	UserRepo     repository.UserRepository
	SaleRepo     repository.SaleRepository
	ProductRepo  repository.ProductRepository
	TemplateRepo repository.TemplateRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Drafts       usecase.DraftUsecase      `optional:"true"`
	SiteEditor   usecase.SiteEditorUsecase `optional:"true"`
	Config       *config.Config
	Logger       *slog.Logger
}

// NewShellService is the constructor for shellService.
func NewShellService(params ShellServiceParams) usecase.ShellUsecase {
	var latency time.Duration
	if params.Config != nil && params.Config.Shell != nil {
		latency = params.Config.Shell.SimulatedLatency
	}

	srv := &shellService{
		txManager:    params.TxManager,
		sessionRepo:  params.SessionRepo,
		userRepo:     params.UserRepo,
		saleRepo:     params.SaleRepo,
		productRepo:  params.ProductRepo,
		templateRepo: params.TemplateRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		latency:      latency,
		locks:        newKeyedMutex(),
		now:          time.Now,
		logger:       params.Logger,
	}
	if params.Drafts != nil {
		srv.drafts = params.Drafts
	}
	if params.SiteEditor != nil {
		srv.siteEditors = params.SiteEditor
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *shellService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateSession starts a client on the home page.
func (srv *shellService) CreateSession(ctx context.Context) (*shell.Session, error) {
	s := shell.NewSession(entity.NewID(), srv.now())
	if err := srv.sessionRepo.Save(ctx, s); err != nil {
		return nil, errors.Wrap(err, "failed to save session")
	}

	srv.log(ctx).Debug("Shell session created", slog.String("session_id", s.ID))

	return s, nil
}

// GetSession returns the current state of a session.
func (srv *shellService) GetSession(ctx context.Context, sessionID string) (*shell.Session, error) {
	return srv.findSession(ctx, sessionID)
}

// GoToAuth opens the sign-in page.
func (srv *shellService) GoToAuth(ctx context.Context, sessionID string) (*shell.Session, error) {
	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		return s.GoToAuth(srv.now())
	})
}

// BackToHome leaves the sign-in page.
func (srv *shellService) BackToHome(ctx context.Context, sessionID string) (*shell.Session, error) {
	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		return s.BackToHome(srv.now())
	})
}

// SignIn authenticates by email and password.
func (srv *shellService) SignIn(ctx context.Context, sessionID, email, password string) (*usecase.AuthResult, error) {
	if err := srv.wait(ctx); err != nil {
		return nil, err
	}

	var user *entity.User
	s, err := srv.transition(ctx, sessionID, func(s *shell.Session) error {
		found, err := srv.userRepo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find user")
		}
		if !srv.hasher.Check(password, found.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}
		user = found

		return s.SignedIn(found, srv.now())
	})
	if err != nil {
		srv.log(ctx).Info("Sign-in rejected", slog.String("session_id", sessionID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("User signed in", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))

	return srv.issue(s, user)
}

// SignUp registers a new creator from the creator template.
func (srv *shellService) SignUp(ctx context.Context, sessionID, email, password string) (*usecase.AuthResult, error) {
	if err := srv.wait(ctx); err != nil {
		return nil, err
	}

	hash, err := srv.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	page, err := srv.templateRepo.FindByID(ctx, defaultTemplateID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load default template")
	}

	user := &entity.User{
		ID:           entity.NewID(),
		Name:         newCreatorName,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Role:         entity.RoleCreator,
		CreatorProfile: &entity.CreatorProfile{
			DefaultCurrency:  entity.CurrencyNGN,
			StoreBranding:    entity.StoreBranding{PrimaryColor: entity.DefaultPrimaryColor},
			AffiliateProgram: &entity.AffiliateProgram{CommissionRate: entity.DefaultCommissionRate},
			LandingPage:      page,
		},
	}

	s, err := srv.transition(ctx, sessionID, func(s *shell.Session) error {
		// A rejected transition rolls the new account back.
		return srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
			if err := f.NewUserRepository().Create(ctx, user); err != nil {
				if errors.Is(err, repository.ErrDuplicateEmail) {
					return domainerrors.ErrUserAlreadyExists
				}

				return errors.Wrap(err, "failed to create user")
			}

			return s.SignedUp(user, srv.now())
		})
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Creator signed up", slog.String("user_id", user.ID))

	return srv.issue(s, user)
}

// CompleteOnboarding names the new creator and enters the app.
func (srv *shellService) CompleteOnboarding(ctx context.Context, sessionID, userID, name string) (*shell.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.NewValidationError(domainerrors.ErrValidationFailed, map[string]string{"name": "required"})
	}

	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		if s.UserID != userID {
			return domainerrors.ErrUnauthenticated
		}

		err := srv.txManager.Execute(ctx, func(f repository.RepositoryFactory) error {
			users := f.NewUserRepository()
			user, err := users.FindByID(ctx, userID)
			if err != nil {
				return mapUserError(err)
			}
			user.Name = name

			return errors.Wrap(users.Update(ctx, user), "failed to update user")
		})
		if err != nil {
			return err
		}

		return s.CompleteOnboarding(srv.now())
	})
}

// Logout clears the user and returns home.
func (srv *shellService) Logout(ctx context.Context, sessionID string) (*shell.Session, error) {
	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		s.Logout(srv.now())

		return nil
	})
}

// Navigate switches the dashboard view.
func (srv *shellService) Navigate(ctx context.Context, sessionID string, view shell.View) (*shell.Session, error) {
	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		return s.Navigate(view, srv.now())
	})
}

// OpenCourse shows the course player when the user bought the product or owns it.
func (srv *shellService) OpenCourse(ctx context.Context, sessionID, userID, productID string) (*shell.Session, error) {
	product, err := srv.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, mapProductError(err)
	}
	if err := canView(ctx, srv.saleRepo, userID, product); err != nil {
		return nil, err
	}

	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		return s.OpenCourse(product.ID, srv.now())
	})
}

// CloseCourse returns to the library.
func (srv *shellService) CloseCourse(ctx context.Context, sessionID string) (*shell.Session, error) {
	return srv.transition(ctx, sessionID, func(s *shell.Session) error {
		return s.CloseCourse(srv.now())
	})
}

// Authorize checks that the session still carries userID.
func (srv *shellService) Authorize(ctx context.Context, sessionID, userID string) (*shell.Session, error) {
	s, err := srv.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.Authenticated() || s.UserID != userID {
		return nil, domainerrors.ErrUnauthenticated
	}

	return s, nil
}

// CurrentUser returns the signed-in user.
func (srv *shellService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}

	return user, nil
}

// transition loads a session, applies fn and saves the result. The session
// is saved even when fn fails, since guards may reset it. Editing sessions
// the user walked away from are torn down afterwards.
func (srv *shellService) transition(ctx context.Context, sessionID string, fn func(s *shell.Session) error) (*shell.Session, error) {
	unlock := srv.locks.lock(sessionID)
	defer unlock()

	s, err := srv.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := *s
	fnErr := fn(s)

	if *s != before {
		if err := srv.sessionRepo.Save(ctx, s); err != nil {
			return nil, errors.Wrap(err, "failed to save session")
		}
		srv.teardown(ctx, before, *s)
	}
	if fnErr != nil {
		return nil, fnErr
	}

	return s, nil
}

// teardown closes the drafts and site editors left behind when the user
// signs out or leaves the view that hosts them.
func (srv *shellService) teardown(ctx context.Context, before, after shell.Session) {
	if before.UserID == "" {
		return
	}
	signedOut := after.UserID != before.UserID

	left := func(v shell.View) bool {
		return signedOut || (before.View == v && after.View != v)
	}
	if srv.drafts != nil && left(shell.ViewProducts) {
		srv.drafts.CloseOwner(ctx, before.UserID)
	}
	if srv.siteEditors != nil && left(shell.ViewSiteEditor) {
		srv.siteEditors.CloseOwner(ctx, before.UserID)
	}
}

func (srv *shellService) findSession(ctx context.Context, sessionID string) (*shell.Session, error) {
	s, err := srv.sessionRepo.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrShellSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session")
	}

	return s, nil
}

func (srv *shellService) issue(s *shell.Session, user *entity.User) (*usecase.AuthResult, error) {
	token, err := srv.tokenService.GenerateAccessToken(user.ID, user.Role, s.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	return &usecase.AuthResult{
		Session:     s,
		User:        user,
		AccessToken: token,
		ExpiresAt:   srv.now().Add(srv.tokenService.TokenTTL()),
	}, nil
}

// wait applies the configured artificial latency.
func (srv *shellService) wait(ctx context.Context) error {
	if srv.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(srv.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}
