package analyticssvc

import (
	"context"

	"github.com/nofilahm/salesdash/internal/domain"
	"github.com/nofilahm/salesdash/internal/infra/logging"
)

// AnalyticsEngine implements AnalyticsService on top of the package's aggregate functions.
// A section whose columns are missing becomes a Warning; the other sections still render.
type AnalyticsEngine struct {
	cfg AnalyticsConfig
	log logging.Logger
}

var _ AnalyticsService = (*AnalyticsEngine)(nil)

// NewAnalyticsEngine creates an AnalyticsEngine with the given configuration.
func NewAnalyticsEngine(cfg AnalyticsConfig) *AnalyticsEngine {
	return &AnalyticsEngine{
		cfg: cfg,
		log: logging.GetLogger("svc.analyticssvc.analytics_engine"),
	}
}

// SalesView implements AnalyticsService.SalesView.
func (engine *AnalyticsEngine) SalesView(ctx context.Context, ds *domain.Dataset) SalesTab {
	var (
		tab SalesTab
		err error
	)

	w := engine.collector(ctx, domain.TabSales)
	tab.Summary, err = SalesKPIs(ds)
	w.check("summary", err)
	tab.MonthlyRevenue, err = MonthlyRevenue(ds)
	w.check("monthlyRevenue", err)
	tab.DailyRevenue, err = DailyRevenue(ds)
	w.check("dailyRevenue", err)
	tab.WeekdayRevenue, err = WeekdayRevenue(ds)
	w.check("weekdayRevenue", err)
	tab.ByCategory, err = ByCategory(ds)
	w.check("byCategory", err)
	tab.ByPaymentMethod, err = ByPaymentMethod(ds)
	w.check("byPaymentMethod", err)
	tab.Warnings = w.warnings

	return tab
}

// CustomerView implements AnalyticsService.CustomerView.
func (engine *AnalyticsEngine) CustomerView(ctx context.Context, ds *domain.Dataset) CustomerTab {
	var (
		tab CustomerTab
		err error
	)

	w := engine.collector(ctx, domain.TabCustomer)
	tab.Summary, err = CustomerKPIs(ds, engine.cfg.ChurnThreshold)
	w.check("summary", err)
	tab.ByAgeGroup, err = ByAgeGroup(ds)
	w.check("byAgeGroup", err)
	tab.ByPaymentMethod, err = ByPaymentMethod(ds)
	w.check("byPaymentMethod", err)
	tab.Warnings = w.warnings

	return tab
}

// ProductView implements AnalyticsService.ProductView.
func (engine *AnalyticsEngine) ProductView(ctx context.Context, ds *domain.Dataset) ProductTab {
	var (
		tab ProductTab
		err error
	)

	w := engine.collector(ctx, domain.TabProduct)
	tab.ByItem, err = ByItem(ds, engine.cfg.TopN)
	w.check("byItem", err)
	tab.ByRestaurant, err = ByRestaurant(ds, engine.cfg.TopN)
	w.check("byRestaurant", err)
	tab.ByCategory, err = ByCategory(ds)
	w.check("byCategory", err)
	tab.RatingByRestaurant, err = RatingByRestaurant(ds)
	w.check("ratingByRestaurant", err)
	tab.Warnings = w.warnings

	return tab
}

type warningCollector struct {
	ctx      context.Context //nolint:containedctx
	log      logging.Logger
	warnings []Warning
}

func (engine *AnalyticsEngine) collector(ctx context.Context, tab domain.Tab) *warningCollector {
	return &warningCollector{ctx: ctx, log: engine.log.With("tab", tab)}
}

// check records err as a warning for the named section.
func (w *warningCollector) check(name string, err error) {
	if err == nil {
		return
	}

	w.log.WarnContext(w.ctx, "section unavailable", "section", name, "error", err)
	w.warnings = append(w.warnings, Warning{Section: name, Message: err.Error()})
}
