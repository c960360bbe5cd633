package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDatasetUnavailable is returned when the dataset source cannot be loaded.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrMissingColumn is returned when a column required by an operation is absent.
	ErrMissingColumn = errors.New("missing column")
)

// LoadError reports a dataset source that could not be opened or parsed.
// It matches both ErrDatasetUnavailable and the underlying cause.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrDatasetUnavailable, e.Err}
}

// Dataset is the cleaned, immutable result of loading an order file.
// Records must not be modified by consumers.
type Dataset struct {
	Source      string        // Path the dataset was loaded from
	Fingerprint string        // Hex sha256 of the source content; empty when unavailable
	Columns     []string      // Sorted source columns that were present
	Records     []OrderRecord // Rows that survived cleaning, in source order
	Dropped     int           // Rows removed for missing essential fields
}

// NewUnavailableDataset returns the marker handed out in place of a dataset
// whose source could not be loaded.
func NewUnavailableDataset(source string) *Dataset {
	return &Dataset{Source: source}
}

// Available reports whether the dataset was loaded successfully.
func (d *Dataset) Available() bool {
	return d != nil && d.Fingerprint != ""
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}

	return len(d.Records)
}

// HasColumn reports whether the named source column was present.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}

	i := sort.SearchStrings(d.Columns, name)

	return i < len(d.Columns) && d.Columns[i] == name
}

// RequireColumns returns ErrMissingColumn naming the first absent column.
func (d *Dataset) RequireColumns(names ...string) error {
	for _, name := range names {
		if !d.HasColumn(name) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return nil
}
