package analyticssvc

import (
	"context"

	"github.com/nofilahm/salesdash/internal/domain"
)

// AnalyticsService computes the per-tab dashboard views from a loaded dataset.
// Every view is a pure function of the dataset: row order never changes the result.
type AnalyticsService interface {
	// SalesView returns revenue KPIs, trends and category/payment breakdowns.
	SalesView(ctx context.Context, ds *domain.Dataset) SalesTab

	// CustomerView returns customer KPIs including churn and the age-group breakdown.
	CustomerView(ctx context.Context, ds *domain.Dataset) CustomerTab

	// ProductView returns item, restaurant and category breakdowns and restaurant ratings.
	ProductView(ctx context.Context, ds *domain.Dataset) ProductTab
}
