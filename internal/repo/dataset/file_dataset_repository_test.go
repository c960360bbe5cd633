package dataset_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nofilahm/salesdash/internal/domain"
	. "github.com/nofilahm/salesdash/internal/repo/dataset"
)

const ordersCSV = `order_id,customer_id,order_date,quantity,price,item_name,category,restaurant_name,payment_method,age,rating
1,C1,2024-01-15,2,10,Burger,Fast Food,Bob's,Card,18-25,4.5
2,C2,2024-02-03,1,15,,Dessert,,Cash,26-35,
3,,2024-02-04,1,5,Fries,Fast Food,Bob's,Card,18-25,3
4,C3,not a date,1,5,Fries,Fast Food,Bob's,Card,18-25,3
5,C1,02/10/2024,abc,-3,Salad,,Green,Card,,oops
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func load(t *testing.T, repo *FileRepository, path string) *domain.Dataset {
	t.Helper()

	ds, err := repo.Load(context.Background(), path)
	require.NoError(t, err)
	require.True(t, ds.Available())

	return ds
}

func TestLoadCleansRecords(t *testing.T) {
	t.Parallel()

	ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), writeFile(t, "orders.csv", ordersCSV))

	require.Len(t, ds.Records, 3)
	assert.Equal(t, 2, ds.Dropped)
	assert.Equal(t, []string{"age", "category", "customer_id", "item_name", "order_date", "order_id",
		"payment_method", "price", "quantity", "rating", "restaurant_name"}, ds.Columns)

	first := ds.Records[0]
	assert.Equal(t, "1", first.OrderID)
	assert.Equal(t, "C1", first.CustomerID)
	assert.InDelta(t, 20.0, first.Sales, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.OrderDay)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.OrderMonth)
	assert.Equal(t, "Monday", first.Weekday)
	require.NotNil(t, first.Rating)
	assert.InDelta(t, 4.5, *first.Rating, 1e-9)
	assert.Nil(t, first.DeliveryIssue)

	second := ds.Records[1]
	assert.Equal(t, domain.UnknownItem, second.ItemName)
	assert.Equal(t, "Dessert", second.Category)
	assert.Equal(t, domain.UnknownRestaurant, second.RestaurantName)
	assert.Nil(t, second.Rating)

	third := ds.Records[2]
	assert.Equal(t, "5", third.OrderID)
	assert.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), third.OrderDate)
	assert.Zero(t, third.Quantity)
	assert.Zero(t, third.Price)
	assert.Zero(t, third.Sales)
	assert.Equal(t, domain.UnknownCategory, third.Category)
	assert.Empty(t, third.AgeGroup)
	assert.Nil(t, third.Rating)

	for _, record := range ds.Records {
		assert.NotEmpty(t, record.OrderID)
		assert.NotEmpty(t, record.CustomerID)
		assert.False(t, record.OrderDate.IsZero())
		assert.InDelta(t, record.Quantity*record.Price, record.Sales, 1e-9)
	}
}

func TestLoadNormalisesHeader(t *testing.T) {
	t.Parallel()

	content := "\ufeff Order_ID ,Customer ID,ORDER_DATE,Order_ID\n7,C9,2023-12-31,ignored\n"
	ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), writeFile(t, "orders.csv", content))

	require.Len(t, ds.Records, 1)
	assert.Equal(t, "7", ds.Records[0].OrderID)
	assert.Equal(t, "C9", ds.Records[0].CustomerID)
	assert.Equal(t, "Sunday", ds.Records[0].Weekday)
}

func TestLoadWithoutAmountColumns(t *testing.T) {
	t.Parallel()

	content := "order_id,customer_id,order_date\n1,C1,2024-03-01\n"
	ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), writeFile(t, "orders.csv", content))

	require.Len(t, ds.Records, 1)
	assert.Zero(t, ds.Records[0].Sales)
	assert.False(t, ds.HasColumn(domain.ColumnQuantity))
	assert.False(t, ds.HasColumn(domain.ColumnPrice))
	assert.ErrorIs(t, ds.RequireColumns(domain.ColumnPrice), domain.ErrMissingColumn)
}

func TestLoadOverflowingSales(t *testing.T) {
	t.Parallel()

	content := "order_id,customer_id,order_date,quantity,price\n" +
		"1,C1,2024-03-01,1e200,1e200\n" +
		"2,C2,2024-03-02,2,1e308\n" +
		"3,C3,2024-03-03,2,2.5\n"
	ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), writeFile(t, "orders.csv", content))

	require.Len(t, ds.Records, 3)
	assert.Equal(t, 1e200, ds.Records[0].Quantity)
	assert.Zero(t, ds.Records[0].Sales)
	assert.Zero(t, ds.Records[1].Sales)
	assert.Equal(t, 5.0, ds.Records[2].Sales)
	assert.Zero(t, ds.Dropped)
}

func TestLoadHeaderOnly(t *testing.T) {
	t.Parallel()

	ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), writeFile(t, "orders.csv", "order_id,customer_id,order_date\n"))

	assert.Zero(t, ds.Len())
	assert.Zero(t, ds.Dropped)
}

func TestLoadFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		cause   error
	}{
		{"missing essential column", "orders.csv", "order_id,order_date\n1,2024-01-01\n", domain.ErrMissingColumn},
		{"empty file", "orders.csv", "", ErrEmptySource},
		{"unsupported extension", "orders.parquet", "x", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, tt.file, tt.content)
			ds, err := NewFileRepository(FileDatasetRepositoryConfig{}).Load(context.Background(), path)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
			assert.ErrorIs(t, err, tt.cause)

			var loadErr *domain.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, path, loadErr.Path)

			require.NotNil(t, ds)
			assert.False(t, ds.Available())
			assert.Zero(t, ds.Len())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(FileDatasetRepositoryConfig{})
	ds, err := repo.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, ds.Available())
	assert.Zero(t, repo.Stats().Entries)
}

func TestLoadCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileRepository(FileDatasetRepositoryConfig{}).Load(ctx, writeFile(t, "orders.csv", ordersCSV))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrDatasetUnavailable)
}

func TestLoadIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(FileDatasetRepositoryConfig{})
	path := writeFile(t, "orders.csv", ordersCSV)

	first := load(t, repo, path)
	second := load(t, repo, path)

	assert.Equal(t, first, second)
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Parsed: 1}, repo.Stats())

	fresh := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), path)
	assert.Equal(t, first, fresh)
}

func TestLoadConcurrent(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(FileDatasetRepositoryConfig{})
	path := writeFile(t, "orders.csv", ordersCSV)

	var wg sync.WaitGroup

	results := make([]*domain.Dataset, 8)
	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], _ = repo.Load(context.Background(), path)
		}()
	}

	wg.Wait()

	for _, ds := range results {
		assert.Equal(t, results[0].Fingerprint, ds.Fingerprint)
		assert.Equal(t, results[0].Records, ds.Records)
	}
}

func TestLoadDetectsChanges(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(FileDatasetRepositoryConfig{})
	path := writeFile(t, "orders.csv", ordersCSV)
	before := load(t, repo, path)

	require.NoError(t, os.WriteFile(path, []byte(ordersCSV+"6,C4,2024-03-01,1,1\n"), 0o600))

	after := load(t, repo, path)
	assert.NotEqual(t, before.Fingerprint, after.Fingerprint)
	assert.Equal(t, before.Len()+1, after.Len())

	// Same bytes, new mtime: the fingerprint keeps the cached value.
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	touched := load(t, repo, path)
	assert.Same(t, after, touched)
	assert.Equal(t, uint64(1), repo.Stats().Revalidated)
}

func TestInvalidateAndPurge(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(FileDatasetRepositoryConfig{})
	path := writeFile(t, "orders.csv", ordersCSV)

	load(t, repo, path)
	repo.Invalidate(path)
	assert.Zero(t, repo.Stats().Entries)

	load(t, repo, path)
	assert.Equal(t, uint64(2), repo.Stats().Parsed)

	repo.Purge()
	assert.Zero(t, repo.Stats().Entries)
}

func TestLoadDelimiters(t *testing.T) {
	t.Parallel()

	t.Run("tsv", func(t *testing.T) {
		t.Parallel()

		content := "order_id\tcustomer_id\torder_date\tquantity\tprice\n1\tC1\t2024-01-15\t3\t2.5\n"
		ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), writeFile(t, "orders.tsv", content))

		require.Len(t, ds.Records, 1)
		assert.InDelta(t, 7.5, ds.Records[0].Sales, 1e-9)
	})

	t.Run("semicolon", func(t *testing.T) {
		t.Parallel()

		content := "order_id;customer_id;order_date;quantity;price\n1;C1;2024-01-15;2;$1,250.00\n"
		ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{Delimiter: ";"}), writeFile(t, "orders.csv", content))

		require.Len(t, ds.Records, 1)
		assert.InDelta(t, 2500.0, ds.Records[0].Sales, 1e-9)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := NewFileRepository(FileDatasetRepositoryConfig{Delimiter: "::"}).
			Load(context.Background(), writeFile(t, "orders.csv", ordersCSV))
		assert.ErrorIs(t, err, ErrInvalidDelimiter)
	})
}

func TestLoadSpreadsheet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	xlsxPath := filepath.Join(dir, "orders.xlsx")

	require.NoError(t, os.WriteFile(csvPath, []byte(ordersCSV), 0o600))

	book := excelize.NewFile()
	rows := [][]any{
		{"order_id", "customer_id", "order_date", "quantity", "price", "item_name", "category", "restaurant_name", "payment_method", "age", "rating"},
		{"1", "C1", "2024-01-15", "2", "10", "Burger", "Fast Food", "Bob's", "Card", "18-25", "4.5"},
		{"2", "C2", "2024-02-03", "1", "15", "", "Dessert", "", "Cash", "26-35", ""},
		{"3", "", "2024-02-04", "1", "5", "Fries", "Fast Food", "Bob's", "Card", "18-25", "3"},
		{"4", "C3", "not a date", "1", "5", "Fries", "Fast Food", "Bob's", "Card", "18-25", "3"},
		{"5", "C1", "02/10/2024", "abc", "-3", "Salad", "", "Green", "Card", "", "oops"},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow("Sheet1", cell, &row))
	}

	require.NoError(t, book.SaveAs(xlsxPath))
	require.NoError(t, book.Close())

	repo := NewFileRepository(FileDatasetRepositoryConfig{})
	fromCSV := load(t, repo, csvPath)
	fromXLSX := load(t, repo, xlsxPath)

	assert.Equal(t, fromCSV.Records, fromXLSX.Records)
	assert.Equal(t, fromCSV.Columns, fromXLSX.Columns)
	assert.Equal(t, fromCSV.Dropped, fromXLSX.Dropped)
}

func TestLoadSpreadsheetSerialDates(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "orders.xlsx")

	book := excelize.NewFile()
	require.NoError(t, book.SetSheetRow("Sheet1", "A1", &[]any{"order_id", "customer_id", "order_date"}))
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &[]any{"1", "C1", 45306}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	ds := load(t, NewFileRepository(FileDatasetRepositoryConfig{}), path)

	require.Len(t, ds.Records, 1)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ds.Records[0].OrderDay)
}
