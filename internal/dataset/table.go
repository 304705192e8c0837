package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// missingTokens are cell values treated as an absent number.
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
}

// utf8BOM is stripped from the start of CSV files written by spreadsheet tools.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TableOption configures LoadTable.
type TableOption func(*tableOptions)

type tableOptions struct {
	rowLabels bool
}

// WithRowLabels treats the first column as row labels rather than data.
// The header cell of that column is ignored, so both an empty header and a
// named one work.
func WithRowLabels() TableOption {
	return func(o *tableOptions) {
		o.rowLabels = true
	}
}

// Table is an immutable CSV result table.
// Cells are kept as strings and converted on access.
type Table struct {
	path    string
	columns []string
	index   map[string]int
	labels  []string
	rows    [][]string
}

// LoadTable reads a CSV file with a header row.
// A missing file returns ErrMissingFile. Rows shorter than the header are
// padded with empty cells, which read as missing numbers.
func LoadTable(path string, opts ...TableOption) (*Table, error) {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}

	data, err := os.ReadFile(path) //nolint:gosec // Table paths come from user configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseTable(path, data, o)
}

// ParseTable parses CSV data. name identifies the table in errors.
func ParseTable(name string, data []byte, opts ...TableOption) (*Table, error) {
	var o tableOptions
	for _, opt := range opts {
		opt(&o)
	}
	return parseTable(name, data, o)
}

func parseTable(name string, data []byte, o tableOptions) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmptyTable, name)
		}
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	t := &Table{path: name, index: make(map[string]int)}
	first := 0
	if o.rowLabels {
		first = 1
	}
	for i := first; i < len(header); i++ {
		col := strings.TrimSpace(header[i])
		t.index[col] = len(t.columns)
		t.columns = append(t.columns, col)
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if o.rowLabels {
			label := ""
			if len(record) > 0 {
				label = strings.TrimSpace(record[0])
				record = record[1:]
			}
			t.labels = append(t.labels, label)
		}
		row := make([]string, len(t.columns))
		for i := range row {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// Path returns the file the table was loaded from.
func (t *Table) Path() string {
	return t.path
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the data column names in file order, excluding the row
// label column.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// RowLabels returns the row labels, or nil when the table was loaded
// without WithRowLabels.
func (t *Table) RowLabels() []string {
	return append([]string(nil), t.labels...)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
// An absent column returns ErrMissingColumn naming the column and the file.
func (t *Table) Column(name string) (Column, error) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q in %s", ErrMissingColumn, name, t.path)
	}
	cells := make([]string, len(t.rows))
	for r, row := range t.rows {
		cells[r] = row[i]
	}
	return Column{name: name, table: t.path, cells: cells}, nil
}

// Filter returns the rows whose column equals value, preserving order.
// The result shares no state with t.
func (t *Table) Filter(column, value string) (*Table, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrMissingColumn, column, t.path)
	}
	out := &Table{
		path:    t.path,
		columns: t.columns,
		index:   t.index,
	}
	for r, row := range t.rows {
		if row[i] != value {
			continue
		}
		out.rows = append(out.rows, row)
		if t.labels != nil {
			out.labels = append(out.labels, t.labels[r])
		}
	}
	return out, nil
}

// Column is a snapshot of one table column.
type Column struct {
	name  string
	table string
	cells []string
}

// Name returns the column name.
func (c Column) Name() string {
	return c.name
}

// Len returns the number of cells.
func (c Column) Len() int {
	return len(c.cells)
}

// Strings returns the raw cell values.
func (c Column) Strings() []string {
	return append([]string(nil), c.cells...)
}

// Floats returns every cell as a number. Missing cells are NaN.
// A cell that is neither missing nor numeric returns ErrInvalidNumber.
func (c Column) Floats() ([]float64, error) {
	out := make([]float64, len(c.cells))
	for i, cell := range c.cells {
		v, err := parseCell(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: %q in column %q row %d of %s", ErrInvalidNumber, cell, c.name, i+1, c.table)
		}
		out[i] = v
	}
	return out, nil
}

// parseCell converts a cell to a float. Missing tokens yield NaN.
// Thousands separators are accepted since some tables are exported with them.
func parseCell(cell string) (float64, error) {
	if missingTokens[strings.ToLower(cell)] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
}
