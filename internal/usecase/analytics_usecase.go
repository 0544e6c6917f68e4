package usecase

import (
	"context"

	"coursecraft/internal/domain/analytics"
)

// StudentRow is one buyer in a creator's student list.
type StudentRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Products int    `json:"products"`
}

// AnalyticsUsecase serves the creator dashboard.
type AnalyticsUsecase interface {
	Dashboard(ctx context.Context, creatorID string) (*analytics.Summary, error)

	// Students lists the distinct buyers of the creator's products.
	Students(ctx context.Context, creatorID string) ([]StudentRow, error)
}
