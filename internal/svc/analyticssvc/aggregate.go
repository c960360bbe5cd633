package analyticssvc

import (
	"math"

	"github.com/RoaringBitmap/roaring"
	"github.com/shopspring/decimal"
)

// interner assigns dense ids to strings so distinct sets fit in a bitmap.
type interner map[string]uint32

func (in interner) id(s string) uint32 {
	if v, ok := in[s]; ok {
		return v
	}

	v := uint32(len(in)) //nolint:gosec
	in[s] = v

	return v
}

// accumulator collects the sums and distinct sets of one group.
type accumulator struct {
	revenue   decimal.Decimal
	quantity  decimal.Decimal
	orders    *roaring.Bitmap
	customers *roaring.Bitmap
}

func newAccumulator() *accumulator {
	return &accumulator{
		orders:    roaring.New(),
		customers: roaring.New(),
	}
}

func (acc *accumulator) add(sales, quantity float64, order, customer uint32) {
	acc.revenue = acc.revenue.Add(amount(sales))
	acc.quantity = acc.quantity.Add(amount(quantity))
	acc.orders.Add(order)
	acc.customers.Add(customer)
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num decimal.Decimal, den int) float64 {
	if den == 0 {
		return 0
	}

	return toFloat(num.Div(decimal.NewFromInt(int64(den))))
}

// percent returns 100*part/whole, or 0 when whole is 0.
func percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}

	return toFloat(part.Mul(decimal.NewFromInt(100)).Div(whole))
}

// amount converts v to a decimal; NaN and infinities count as 0.
func amount(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}

	return decimal.NewFromFloat(v)
}

// toFloat converts d back to a float64, clamped to the finite range so views
// always encode as JSON.
func toFloat(d decimal.Decimal) float64 {
	return math.Max(-math.MaxFloat64, math.Min(d.InexactFloat64(), math.MaxFloat64))
}
