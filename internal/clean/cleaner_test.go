package clean

import (
	"testing"

	"datalens/domain/table"
)

func buildTable(names []string, types []table.ColumnType, rows [][]string) *table.Table {
	t := table.New(names)
	for i := range t.Columns {
		t.Columns[i].Type = types[i]
	}
	t.Rows = rows
	t.RefreshColumnStats()
	return t
}

func TestCleanRemovesDuplicatesAndFillsMissing(t *testing.T) {
	input := buildTable(
		[]string{"region", "sales"},
		[]table.ColumnType{table.TypeCategorical, table.TypeNumeric},
		[][]string{
			{"North", "10"},
			{"South", ""},
			{"North", "10"}, // exact duplicate of row 0
			{"East", "20"},
			{"West", "30"},
		},
	)

	cleaner := New(Options{})
	out, report := cleaner.Clean(input)

	if report.DuplicatesRemoved != 1 {
		t.Errorf("Expected 1 duplicate removed, got %d", report.DuplicatesRemoved)
	}
	if out.RowCount() != 4 {
		t.Errorf("Expected 4 rows after cleaning, got %d", out.RowCount())
	}
	if report.FilledByColumn["sales"] != 1 {
		t.Errorf("Expected 1 filled cell in sales, got %d", report.FilledByColumn["sales"])
	}

	// Missing sales cell gets the mean of the observed values (10+20+30)/3
	if out.Rows[1][1] != "20" {
		t.Errorf("Expected missing sales filled with mean 20, got %q", out.Rows[1][1])
	}
	if out.MissingCells() != 0 {
		t.Errorf("Expected no missing cells after cleaning, got %d", out.MissingCells())
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	input := buildTable(
		[]string{"region", "sales"},
		[]table.ColumnType{table.TypeCategorical, table.TypeNumeric},
		[][]string{
			{"North", "10"},
			{"South", ""},
			{"North", "10"},
		},
	)

	cleaner := New(Options{})
	once, _ := cleaner.Clean(input)
	twice, report := cleaner.Clean(once)

	if report.DuplicatesRemoved != 0 {
		t.Errorf("Second pass should remove nothing, removed %d", report.DuplicatesRemoved)
	}
	if report.TotalFilled() != 0 {
		t.Errorf("Second pass should fill nothing, filled %d", report.TotalFilled())
	}
	if twice.RowCount() != once.RowCount() {
		t.Errorf("Second pass changed row count: %d -> %d", once.RowCount(), twice.RowCount())
	}
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	rows := [][]string{
		{"North", ""},
		{"North", ""},
	}
	input := buildTable(
		[]string{"region", "sales"},
		[]table.ColumnType{table.TypeCategorical, table.TypeNumeric},
		rows,
	)

	cleaner := New(Options{})
	cleaner.Clean(input)

	if len(input.Rows) != 2 {
		t.Errorf("Input row count changed to %d", len(input.Rows))
	}
	if input.Rows[0][1] != "" {
		t.Errorf("Input cell was mutated to %q", input.Rows[0][1])
	}
}

func TestCategoricalFillConstant(t *testing.T) {
	input := buildTable(
		[]string{"city"},
		[]table.ColumnType{table.TypeCategorical},
		[][]string{{"Austin"}, {""}, {"Dallas"}},
	)

	out, report := New(Options{}).Clean(input)

	if out.Rows[1][0] != DefaultFillConstant {
		t.Errorf("Expected %q fill, got %q", DefaultFillConstant, out.Rows[1][0])
	}
	if report.FilledByColumn["city"] != 1 {
		t.Errorf("Expected 1 fill in city, got %d", report.FilledByColumn["city"])
	}
}

func TestModeFillPrefersMostFrequentValue(t *testing.T) {
	input := buildTable(
		[]string{"city"},
		[]table.ColumnType{table.TypeCategorical},
		[][]string{{"Austin"}, {"Dallas"}, {"Dallas"}, {""}},
	)

	out, _ := New(Options{UseMode: true}).Clean(input)

	if out.Rows[3][0] != "Dallas" {
		t.Errorf("Expected mode fill Dallas, got %q", out.Rows[3][0])
	}
}

func TestModeFillBreaksTiesByFirstAppearance(t *testing.T) {
	input := buildTable(
		[]string{"city"},
		[]table.ColumnType{table.TypeCategorical},
		[][]string{{"Austin"}, {"Dallas"}, {""}},
	)

	out, _ := New(Options{UseMode: true}).Clean(input)

	if out.Rows[2][0] != "Austin" {
		t.Errorf("Expected tie broken by first appearance (Austin), got %q", out.Rows[2][0])
	}
}

func TestNumericColumnWithNoValuesGetsNoFill(t *testing.T) {
	input := buildTable(
		[]string{"sales"},
		[]table.ColumnType{table.TypeNumeric},
		[][]string{{""}, {""}},
	)

	out, report := New(Options{}).Clean(input)

	if report.TotalFilled() != 0 {
		t.Errorf("Expected no fills for all-missing numeric column, got %d", report.TotalFilled())
	}
	if out.Rows[0][0] != "" {
		t.Errorf("Expected cell to stay missing, got %q", out.Rows[0][0])
	}
	if out.Columns[0].MissingCount != 1 {
		t.Errorf("Expected 1 missing cell after dedupe, got %d", out.Columns[0].MissingCount)
	}
}
