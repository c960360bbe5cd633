package analyticssvc

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nofilahm/salesdash/internal/domain"
)

// ByCategory groups revenue by category.
func ByCategory(ds *domain.Dataset) ([]Breakdown, error) {
	return breakdown(ds, domain.ColumnCategory, 0, func(r *domain.OrderRecord) string { return r.Category })
}

// ByPaymentMethod groups revenue by payment method.
func ByPaymentMethod(ds *domain.Dataset) ([]Breakdown, error) {
	return breakdown(ds, domain.ColumnPaymentMethod, 0, func(r *domain.OrderRecord) string { return r.PaymentMethod })
}

// ByAgeGroup groups revenue by customer age group.
func ByAgeGroup(ds *domain.Dataset) ([]Breakdown, error) {
	return breakdown(ds, domain.ColumnAge, 0, func(r *domain.OrderRecord) string { return r.AgeGroup })
}

// ByRestaurant groups revenue by restaurant and keeps the top n groups; n <= 0 keeps all.
func ByRestaurant(ds *domain.Dataset, n int) ([]Breakdown, error) {
	return breakdown(ds, domain.ColumnRestaurantName, n, func(r *domain.OrderRecord) string { return r.RestaurantName })
}

// ByItem groups revenue by item and keeps the top n groups; n <= 0 keeps all.
func ByItem(ds *domain.Dataset, n int) ([]Breakdown, error) {
	return breakdown(ds, domain.ColumnItemName, n, func(r *domain.OrderRecord) string { return r.ItemName })
}

func breakdown(ds *domain.Dataset, column string, n int, keyOf func(*domain.OrderRecord) string) ([]Breakdown, error) {
	if err := ds.RequireColumns(column, domain.ColumnOrderID, domain.ColumnQuantity, domain.ColumnPrice); err != nil {
		return nil, err
	}

	var (
		total     decimal.Decimal
		groups    = make(map[string]*accumulator)
		orders    = make(interner)
		customers = make(interner)
	)

	for i := range ds.Records {
		r := &ds.Records[i]

		key := strings.TrimSpace(keyOf(r))
		if key == "" {
			key = UnknownKey
		}

		acc, ok := groups[key]
		if !ok {
			acc = newAccumulator()
			groups[key] = acc
		}

		acc.add(r.Sales, r.Quantity, orders.id(r.OrderID), customers.id(r.CustomerID))
		total = total.Add(amount(r.Sales))
	}

	out := make([]Breakdown, 0, len(groups))

	for key, acc := range groups {
		count := int(acc.orders.GetCardinality())
		out = append(out, Breakdown{
			Key:               key,
			Revenue:           toFloat(acc.revenue),
			Orders:            count,
			Customers:         int(acc.customers.GetCardinality()),
			Quantity:          toFloat(acc.quantity),
			AverageOrderValue: ratio(acc.revenue, count),
			Share:             percent(acc.revenue, total),
		})
	}

	slices.SortFunc(out, func(a, b Breakdown) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}

		return cmp.Compare(a.Key, b.Key)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}

	return out, nil
}

// RatingByRestaurant returns the mean rating per restaurant over rated orders,
// best first, ties broken by name.
func RatingByRestaurant(ds *domain.Dataset) ([]RestaurantRating, error) {
	if err := ds.RequireColumns(domain.ColumnRating, domain.ColumnRestaurantName); err != nil {
		return nil, err
	}

	type tally struct {
		sum   decimal.Decimal
		count int
	}

	tallies := make(map[string]*tally)

	for _, r := range ds.Records {
		if r.Rating == nil {
			continue
		}

		t, ok := tallies[r.RestaurantName]
		if !ok {
			t = new(tally)
			tallies[r.RestaurantName] = t
		}

		t.sum = t.sum.Add(amount(*r.Rating))
		t.count++
	}

	out := make([]RestaurantRating, 0, len(tallies))
	for name, t := range tallies {
		out = append(out, RestaurantRating{Restaurant: name, MeanRating: ratio(t.sum, t.count), Ratings: t.count})
	}

	slices.SortFunc(out, func(a, b RestaurantRating) int {
		if c := cmp.Compare(b.MeanRating, a.MeanRating); c != 0 {
			return c
		}

		return cmp.Compare(a.Restaurant, b.Restaurant)
	})

	return out, nil
}
