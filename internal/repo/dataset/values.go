package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are tried in order; month-first for ambiguous slash dates.
//
//nolint:gochecknoglobals
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006-01",
}

// Spreadsheet serial day numbers accepted as dates (1900-01-01 .. 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// missingMarkers are cell values treated as absent, compared case-insensitively.
//
//nolint:gochecknoglobals
var missingMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"nat":  {},
	"null": {},
	"none": {},
	"n/a":  {},
	"na":   {},
	"-":    {},
}

func isMissing(s string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(s))]

	return ok
}

// text returns the trimmed value, or "" for missing markers.
func text(s string) string {
	if isMissing(s) {
		return ""
	}

	return strings.TrimSpace(s)
}

// textOr returns the trimmed value, or fallback when it is missing.
func textOr(s, fallback string) string {
	if v := text(s); v != "" {
		return v
	}

	return fallback
}

// parseDate returns the timestamp in UTC, or false when s is not a date.
func parseDate(s string, excelSerial bool) (time.Time, bool) {
	s = text(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	if excelSerial {
		if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t.UTC(), true
			}
		}
	}

	return time.Time{}, false
}

// parseAmount coerces a quantity or price. Anything that is not a finite,
// non-negative number becomes 0.
func parseAmount(s string) float64 {
	s = text(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return v
}

// parseOptionalFloat returns nil when s is missing or not a finite number.
func parseOptionalFloat(s string) *float64 {
	v, err := strconv.ParseFloat(text(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

// parseOptionalBool understands yes/no style flags; nil when unrecognised.
func parseOptionalBool(s string) *bool {
	var v bool

	switch strings.ToLower(text(s)) {
	case "1", "true", "t", "yes", "y":
		v = true
	case "0", "false", "f", "no", "n":
		v = false
	default:
		return nil
	}

	return &v
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
