package impl

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"coursecraft/config"
	deliverycontext "coursecraft/internal/delivery/context"
	"coursecraft/internal/domain/analytics"
	"coursecraft/internal/domain/entity"
	"coursecraft/internal/domain/repository"
	"coursecraft/internal/usecase"
)

// analyticsService implements the AnalyticsUsecase interface.
type analyticsService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	policy      analytics.ConversionPolicy
	logger      *slog.Logger
}

// AnalyticsServiceParams holds dependencies for AnalyticsService, injected by Fx.
type AnalyticsServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	SaleRepo    repository.SaleRepository
	Config      *config.Config
	Logger      *slog.Logger
}

// NewAnalyticsService is the constructor for analyticsService.
func NewAnalyticsService(params AnalyticsServiceParams) usecase.AnalyticsUsecase {
	weights := analytics.Weights{}
	if params.Config != nil && params.Config.Analytics != nil {
		for currency, w := range params.Config.Analytics.CurrencyWeights {
			weights[entity.Currency(currency)] = w
		}
	}

	return &analyticsService{
		userRepo:    params.UserRepo,
		productRepo: params.ProductRepo,
		saleRepo:    params.SaleRepo,
		policy:      weights,
		logger:      params.Logger,
	}
}

func (srv *analyticsService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Dashboard summarises the creator's sales. Revenue includes products deleted
// since; the ranking only lists products that still exist.
func (srv *analyticsService) Dashboard(ctx context.Context, creatorID string) (*analytics.Summary, error) {
	if _, err := findCreator(ctx, srv.userRepo, creatorID); err != nil {
		return nil, err
	}

	sales, err := srv.saleRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sales")
	}
	products, err := srv.productRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	students, _, err := srv.buyers(ctx, sales)
	if err != nil {
		return nil, err
	}

	summary := analytics.Summarize(sales, products, students, srv.policy)

	srv.log(ctx).Debug("Dashboard computed",
		slog.String("creator_id", creatorID),
		slog.Int("sales", summary.ProductsSold),
		slog.Int("students", summary.TotalStudents),
	)

	return &summary, nil
}

// Students lists the creator's buyers in order of first purchase, newest first.
func (srv *analyticsService) Students(ctx context.Context, creatorID string) ([]usecase.StudentRow, error) {
	if _, err := findCreator(ctx, srv.userRepo, creatorID); err != nil {
		return nil, err
	}

	sales, err := srv.saleRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sales")
	}

	students, counts, err := srv.buyers(ctx, sales)
	if err != nil {
		return nil, err
	}

	rows := make([]usecase.StudentRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, usecase.StudentRow{
			ID:       s.ID,
			Name:     s.Name,
			Email:    s.Email,
			Products: counts[s.ID],
		})
	}

	return rows, nil
}

// buyers resolves the distinct students behind sales and counts the distinct
// products each bought. Unknown accounts are skipped.
func (srv *analyticsService) buyers(ctx context.Context, sales []entity.Sale) ([]*entity.User, map[string]int, error) {
	seen := make(map[string]map[string]bool)
	order := make([]string, 0)
	for _, s := range sales {
		bought, ok := seen[s.StudentID]
		if !ok {
			bought = make(map[string]bool)
			seen[s.StudentID] = bought
			order = append(order, s.StudentID)
		}
		bought[s.ProductID] = true
	}

	users := make([]*entity.User, 0, len(order))
	counts := make(map[string]int, len(order))
	for _, id := range order {
		u, err := srv.userRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				continue
			}

			return nil, nil, errors.Wrap(err, "failed to find student")
		}
		users = append(users, u)
		counts[id] = len(seen[id])
	}

	return users, counts, nil
}
