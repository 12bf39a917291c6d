// Package clean removes duplicate rows and fills missing values.
package clean

import (
	"strconv"
	"strings"

	"datalens/domain/table"

	"github.com/montanaflynn/stats"
)

// DefaultFillConstant is substituted into missing non-numeric cells when no
// mode-based fill is requested
const DefaultFillConstant = "Unknown"

// Options controls how missing values are filled
type Options struct {
	// FillConstant replaces missing categorical cells. Empty means
	// DefaultFillConstant.
	FillConstant string
	// UseMode fills missing categorical cells with the column's most
	// frequent value instead of the constant.
	UseMode bool
}

// Cleaner performs duplicate removal and missing-value substitution
type Cleaner struct {
	opts Options
}

// New creates a cleaner with the given options
func New(opts Options) *Cleaner {
	if opts.FillConstant == "" {
		opts.FillConstant = DefaultFillConstant
	}
	return &Cleaner{opts: opts}
}

// Clean returns a new table with exact-duplicate rows removed and missing
// values filled, plus a report of what changed. The input table is not
// mutated. Cleaning an already-clean table reports zero removals and fills.
func (c *Cleaner) Clean(t *table.Table) (*table.Table, table.CleaningReport) {
	report := table.CleaningReport{FilledByColumn: map[string]int{}}

	out := &table.Table{Columns: make([]table.Column, len(t.Columns))}
	copy(out.Columns, t.Columns)

	// Drop exact duplicates, keeping first occurrence
	seen := make(map[string]struct{}, len(t.Rows))
	out.Rows = make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			report.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}

	// Fill missing values column by column
	for i, col := range out.Columns {
		fill := c.fillValue(out, i, col.Type)
		if fill == "" {
			continue
		}
		filled := 0
		for _, row := range out.Rows {
			if row[i] == "" {
				row[i] = fill
				filled++
			}
		}
		if filled > 0 {
			report.FilledByColumn[col.Name] = filled
		}
	}

	out.RefreshColumnStats()
	return out, report
}

// fillValue picks the substitute for missing cells in one column: the mean
// for numeric columns, the mode or the configured constant otherwise. A
// numeric column with no observed values gets no fill.
func (c *Cleaner) fillValue(t *table.Table, colIndex int, colType table.ColumnType) string {
	if colType == table.TypeNumeric {
		values := make([]float64, 0, len(t.Rows))
		for _, row := range t.Rows {
			if row[colIndex] == "" {
				continue
			}
			if f, err := strconv.ParseFloat(row[colIndex], 64); err == nil {
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			return ""
		}
		mean, err := stats.Mean(values)
		if err != nil {
			return ""
		}
		return strconv.FormatFloat(mean, 'g', -1, 64)
	}

	if c.opts.UseMode {
		if mode := columnMode(t, colIndex); mode != "" {
			return mode
		}
	}
	return c.opts.FillConstant
}

// columnMode returns the most frequent non-missing value, with ties broken
// by first appearance
func columnMode(t *table.Table, colIndex int) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, row := range t.Rows {
		v := row[colIndex]
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := ""
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
