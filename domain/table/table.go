// Package table defines the rectangular dataset model shared by the
// cleaning, profiling, charting and reporting components.
package table

import (
	"encoding/csv"
	"io"
	"strconv"

	"datalens/domain/core"
)

// ColumnType classifies the inferred type of a column
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDatetime    ColumnType = "datetime"
	TypeBoolean     ColumnType = "boolean"
)

// Column holds per-column metadata computed at ingest time
type Column struct {
	Name          string     `json:"name"`
	Type          ColumnType `json:"type"`
	MissingCount  int        `json:"missing_count"`
	DistinctCount int        `json:"distinct_count"`
	SampleValues  []string   `json:"sample_values,omitempty"`
}

// Table is a rectangular dataset. Cells are stored as strings exactly as
// parsed; the empty string marks a missing value. A Table is built once at
// ingest, replaced (not mutated) by the cleaner, and read-only afterwards.
type Table struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New creates a table with the given column names and no rows
func New(names []string) *Table {
	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Type: TypeCategorical}
	}
	return &Table{Columns: cols, Rows: [][]string{}}
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// ColumnNames returns the ordered column names
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Column returns metadata for the named column
func (t *Table) Column(name string) (*Column, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, core.NewColumnNotFoundError(name)
	}
	return &t.Columns[idx], nil
}

// Values returns all non-missing cell values of the named column
func (t *Table) Values(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, core.NewColumnNotFoundError(name)
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) && row[idx] != "" {
			values = append(values, row[idx])
		}
	}
	return values, nil
}

// NumericValues returns all non-missing cells of the named column parsed as
// float64. Cells that do not parse are skipped.
func (t *Table) NumericValues(name string) ([]float64, error) {
	raw, err := t.Values(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			values = append(values, f)
		}
	}
	return values, nil
}

// ColumnsOfType returns the names of all columns with the given type
func (t *Table) ColumnsOfType(ct ColumnType) []string {
	var names []string
	for _, col := range t.Columns {
		if col.Type == ct {
			names = append(names, col.Name)
		}
	}
	return names
}

// NumericColumns returns the names of all numeric columns
func (t *Table) NumericColumns() []string {
	return t.ColumnsOfType(TypeNumeric)
}

// CategoricalColumns returns the names of all non-numeric, non-datetime
// columns. Booleans count as categorical for charting purposes.
func (t *Table) CategoricalColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.Type == TypeCategorical || col.Type == TypeBoolean {
			names = append(names, col.Name)
		}
	}
	return names
}

// Head returns the first n rows (all rows when fewer exist)
func (t *Table) Head(n int) [][]string {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.Rows[:n]
}

// MissingCells returns the total number of missing cells across all columns
func (t *Table) MissingCells() int {
	total := 0
	for _, col := range t.Columns {
		total += col.MissingCount
	}
	return total
}

// RefreshColumnStats recomputes missing and distinct counts from the rows.
// Column types are left untouched.
func (t *Table) RefreshColumnStats() {
	for i := range t.Columns {
		missing := 0
		seen := make(map[string]struct{})
		for _, row := range t.Rows {
			if i >= len(row) || row[i] == "" {
				missing++
				continue
			}
			seen[row[i]] = struct{}{}
		}
		t.Columns[i].MissingCount = missing
		t.Columns[i].DistinctCount = len(seen)
	}
}

// WriteCSV writes the table as CSV with a header row
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
