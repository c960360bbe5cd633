package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptySource is returned when a source has no header row.
	ErrEmptySource = errors.New("empty source")
	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported source format")
	// ErrInvalidDelimiter is returned when the configured delimiter is not a single character.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

// table is a parsed source before typing: a header and string cells.
type table struct {
	header []string
	rows   [][]string

	// excelDates marks sources whose date cells may hold spreadsheet serial numbers.
	excelDates bool
}

// Source formats, chosen from the file extension.
const (
	formatCSV  = "csv"
	formatTSV  = "tsv"
	formatXLSX = "xlsx"
)

func formatOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt", "":
		return formatCSV, nil
	case ".tsv", ".tab":
		return formatTSV, nil
	case ".xlsx", ".xlsm":
		return formatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readTable(content []byte, format string, cfg FileDatasetRepositoryConfig) (*table, error) {
	switch format {
	case formatTSV:
		return readDelimited(content, '\t')
	case formatXLSX:
		return readSpreadsheet(content, cfg.Sheet)
	default:
		delim, err := parseDelimiter(cfg.Delimiter)
		if err != nil {
			return nil, err
		}

		return readDelimited(content, delim)
	}
}

func parseDelimiter(s string) (rune, error) {
	switch {
	case s == "":
		return ',', nil
	case s == `\t`:
		return '\t', nil
	case utf8.RuneCountInString(s) == 1:
		r, _ := utf8.DecodeRuneInString(s)

		return r, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, s)
	}
}

func readDelimited(content []byte, delim rune) (*table, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptySource
		}

		return nil, fmt.Errorf("read header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return &table{header: header, rows: rows}, nil
}

func readSpreadsheet(content []byte, sheet string) (_ *table, err error) {
	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", closeErr)
		}
	}()

	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySource
		}

		sheet = sheets[0]
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("get rows of %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	return &table{header: rows[0], rows: rows[1:], excelDates: true}, nil
}
