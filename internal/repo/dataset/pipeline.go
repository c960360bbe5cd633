package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nofilahm/salesdash/internal/domain"
)

// knownColumns are the source columns the pipeline understands.
//
//nolint:gochecknoglobals
var knownColumns = []string{
	domain.ColumnOrderID,
	domain.ColumnCustomerID,
	domain.ColumnOrderDate,
	domain.ColumnQuantity,
	domain.ColumnPrice,
	domain.ColumnItemName,
	domain.ColumnCategory,
	domain.ColumnRestaurantName,
	domain.ColumnPaymentMethod,
	domain.ColumnAge,
	domain.ColumnRating,
	domain.ColumnSignupDate,
	domain.ColumnLastOrderDate,
	domain.ColumnRatingDate,
	domain.ColumnDeliveryIssues,
}

// cleaned is the output of the pipeline before it is stamped with a source identity.
type cleaned struct {
	columns []string
	records []domain.OrderRecord
	dropped int
}

// columnIndex maps normalised header names to cell positions.
type columnIndex map[string]int

func newColumnIndex(header []string) columnIndex {
	index := make(columnIndex, len(header))

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}

		name = strings.ToLower(strings.TrimSpace(name))
		name = strings.ReplaceAll(name, " ", "_")

		if _, dup := index[name]; !dup && name != "" {
			index[name] = i
		}
	}

	return index
}

// cell returns the raw value of column name in row, or "" when the column
// is absent or the row is short.
func (idx columnIndex) cell(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}

	return row[i]
}

func (idx columnIndex) present() []string {
	var columns []string

	for _, name := range knownColumns {
		if _, ok := idx[name]; ok {
			columns = append(columns, name)
		}
	}

	sort.Strings(columns)

	return columns
}

// clean turns a raw table into typed records:
// dates are parsed (failures become missing), quantity and price default to 0,
// sales is derived, blank text gets a sentinel, calendar features are added and
// rows without order id, order date or customer id are dropped.
func clean(tbl *table) (*cleaned, error) {
	index := newColumnIndex(tbl.header)

	for _, name := range domain.EssentialColumns() {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, name)
		}
	}

	out := &cleaned{
		columns: index.present(),
		records: make([]domain.OrderRecord, 0, len(tbl.rows)),
	}

	for _, row := range tbl.rows {
		if blankRow(row) {
			continue
		}

		record, ok := index.record(row, tbl.excelDates)
		if !ok {
			out.dropped++

			continue
		}

		out.records = append(out.records, record)
	}

	return out, nil
}

func (idx columnIndex) record(row []string, excelDates bool) (domain.OrderRecord, bool) {
	get := func(name string) string { return idx.cell(row, name) }
	date := func(name string) time.Time {
		t, _ := parseDate(get(name), excelDates)

		return t
	}

	orderDate, hasOrderDate := parseDate(get(domain.ColumnOrderDate), excelDates)
	quantity := parseAmount(get(domain.ColumnQuantity))
	price := parseAmount(get(domain.ColumnPrice))

	sales := quantity * price
	if math.IsInf(sales, 0) {
		sales = 0
	}

	record := domain.OrderRecord{
		OrderID:        text(get(domain.ColumnOrderID)),
		CustomerID:     text(get(domain.ColumnCustomerID)),
		OrderDate:      orderDate,
		ItemName:       textOr(get(domain.ColumnItemName), domain.UnknownItem),
		Category:       textOr(get(domain.ColumnCategory), domain.UnknownCategory),
		RestaurantName: textOr(get(domain.ColumnRestaurantName), domain.UnknownRestaurant),
		Quantity:       quantity,
		Price:          price,
		Sales:          sales,
		PaymentMethod:  text(get(domain.ColumnPaymentMethod)),
		AgeGroup:       text(get(domain.ColumnAge)),
		Rating:         parseOptionalFloat(get(domain.ColumnRating)),
		DeliveryIssue:  parseOptionalBool(get(domain.ColumnDeliveryIssues)),
		SignupDate:     date(domain.ColumnSignupDate),
		LastOrderDate:  date(domain.ColumnLastOrderDate),
		RatingDate:     date(domain.ColumnRatingDate),
	}

	if record.OrderID == "" || record.CustomerID == "" || !hasOrderDate {
		return domain.OrderRecord{}, false
	}

	record.OrderDay = truncateDay(orderDate)
	record.OrderMonth = truncateMonth(orderDate)
	record.Weekday = orderDate.Weekday().String()

	return record, true
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
