package analyticssvc

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nofilahm/salesdash/internal/domain"
)

// DefaultChurnThreshold is used when a non-positive threshold is given.
const DefaultChurnThreshold = 180 * 24 * time.Hour

// SalesKPIs returns total revenue, distinct order count and average order value.
func SalesKPIs(ds *domain.Dataset) (SalesSummary, error) {
	if err := ds.RequireColumns(domain.ColumnOrderID, domain.ColumnQuantity, domain.ColumnPrice); err != nil {
		return SalesSummary{}, err
	}

	orders := make(interner)
	acc := newAccumulator()

	for _, r := range ds.Records {
		acc.add(r.Sales, r.Quantity, orders.id(r.OrderID), 0)
	}

	total := int(acc.orders.GetCardinality())

	return SalesSummary{
		TotalRevenue:      toFloat(acc.revenue),
		TotalOrders:       total,
		AverageOrderValue: ratio(acc.revenue, total),
	}, nil
}

// MonthlyRevenue returns revenue per calendar month, oldest first, labelled YYYY-MM.
func MonthlyRevenue(ds *domain.Dataset) ([]Point, error) {
	return revenueSeries(ds, "2006-01", func(r domain.OrderRecord) time.Time { return r.OrderMonth })
}

// DailyRevenue returns revenue per calendar day, oldest first, labelled YYYY-MM-DD.
// Days without orders are omitted.
func DailyRevenue(ds *domain.Dataset) ([]Point, error) {
	return revenueSeries(ds, time.DateOnly, func(r domain.OrderRecord) time.Time { return r.OrderDay })
}

func revenueSeries(ds *domain.Dataset, layout string, bucket func(domain.OrderRecord) time.Time) ([]Point, error) {
	if err := ds.RequireColumns(domain.ColumnOrderDate, domain.ColumnQuantity, domain.ColumnPrice); err != nil {
		return nil, err
	}

	sums := make(map[time.Time]decimal.Decimal)
	for _, r := range ds.Records {
		key := bucket(r)
		sums[key] = sums[key].Add(amount(r.Sales))
	}

	keys := make([]time.Time, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b time.Time) int { return a.Compare(b) })

	points := make([]Point, 0, len(keys))
	for _, key := range keys {
		points = append(points, Point{Label: key.Format(layout), Value: toFloat(sums[key])})
	}

	return points, nil
}

// WeekdayRevenue returns revenue per weekday, Monday through Sunday.
// Weekdays without orders are reported with 0.
func WeekdayRevenue(ds *domain.Dataset) ([]Point, error) {
	if err := ds.RequireColumns(domain.ColumnOrderDate, domain.ColumnQuantity, domain.ColumnPrice); err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal, 7)
	for _, r := range ds.Records {
		sums[r.Weekday] = sums[r.Weekday].Add(amount(r.Sales))
	}

	points := make([]Point, 0, 7)
	for i := range 7 {
		day := time.Weekday((i + 1) % 7).String()
		points = append(points, Point{Label: day, Value: toFloat(sums[day])})
	}

	return points, nil
}

// CustomerKPIs returns distinct customers, revenue per customer and churn.
// A customer is churned when their latest order is older than the dataset's
// latest order minus threshold.
func CustomerKPIs(ds *domain.Dataset, threshold time.Duration) (CustomerSummary, error) {
	err := ds.RequireColumns(domain.ColumnCustomerID, domain.ColumnOrderDate, domain.ColumnQuantity, domain.ColumnPrice)
	if err != nil {
		return CustomerSummary{}, err
	}

	if threshold <= 0 {
		threshold = DefaultChurnThreshold
	}

	var (
		revenue      decimal.Decimal
		latest       = make(map[string]time.Time)
		newest       time.Time
		issues, seen int
	)

	for _, r := range ds.Records {
		revenue = revenue.Add(amount(r.Sales))

		if last, ok := latest[r.CustomerID]; !ok || r.OrderDate.After(last) {
			latest[r.CustomerID] = r.OrderDate
		}

		if r.OrderDate.After(newest) {
			newest = r.OrderDate
		}

		if r.DeliveryIssue != nil {
			seen++

			if *r.DeliveryIssue {
				issues++
			}
		}
	}

	cutoff := newest.Add(-threshold)
	churned := 0

	for _, last := range latest {
		if last.Before(cutoff) {
			churned++
		}
	}

	summary := CustomerSummary{
		TotalCustomers:   len(latest),
		SalesPerCustomer: ratio(revenue, len(latest)),
		ChurnedCustomers: churned,
		ChurnRate:        percent(decimal.NewFromInt(int64(churned)), decimal.NewFromInt(int64(len(latest)))),
	}

	if ds.HasColumn(domain.ColumnDeliveryIssues) {
		rate := percent(decimal.NewFromInt(int64(issues)), decimal.NewFromInt(int64(seen)))
		summary.DeliveryIssueRate = &rate
	}

	return summary, nil
}
