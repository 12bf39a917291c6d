package table

import (
	"bytes"
	"errors"
	"testing"

	"datalens/domain/core"
)

func sampleTable() *Table {
	t := New([]string{"city", "sales"})
	t.Columns[1].Type = TypeNumeric
	t.Rows = [][]string{
		{"Austin", "10"},
		{"Dallas", ""},
		{"Austin", "x"},
		{"", "30"},
	}
	t.RefreshColumnStats()
	return t
}

func TestColumnLookup(t *testing.T) {
	tbl := sampleTable()

	if idx := tbl.ColumnIndex("sales"); idx != 1 {
		t.Errorf("Expected index 1, got %d", idx)
	}
	if idx := tbl.ColumnIndex("nope"); idx != -1 {
		t.Errorf("Expected -1 for unknown column, got %d", idx)
	}
	if _, err := tbl.Column("nope"); !errors.Is(err, core.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}

func TestValuesSkipMissing(t *testing.T) {
	tbl := sampleTable()

	values, err := tbl.Values("city")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(values) != 3 {
		t.Errorf("Expected 3 non-missing cities, got %d", len(values))
	}
}

func TestNumericValuesSkipUnparseable(t *testing.T) {
	tbl := sampleTable()

	values, err := tbl.NumericValues("sales")
	if err != nil {
		t.Fatalf("NumericValues failed: %v", err)
	}
	// "x" and the empty cell are skipped
	if len(values) != 2 {
		t.Fatalf("Expected 2 numeric values, got %d", len(values))
	}
	if values[0] != 10 || values[1] != 30 {
		t.Errorf("Expected [10 30], got %v", values)
	}
}

func TestRefreshColumnStats(t *testing.T) {
	tbl := sampleTable()

	if tbl.Columns[0].MissingCount != 1 {
		t.Errorf("Expected 1 missing city, got %d", tbl.Columns[0].MissingCount)
	}
	if tbl.Columns[0].DistinctCount != 2 {
		t.Errorf("Expected 2 distinct cities, got %d", tbl.Columns[0].DistinctCount)
	}
	if tbl.MissingCells() != 2 {
		t.Errorf("Expected 2 missing cells total, got %d", tbl.MissingCells())
	}
}

func TestHead(t *testing.T) {
	tbl := sampleTable()

	if got := len(tbl.Head(2)); got != 2 {
		t.Errorf("Expected 2 rows, got %d", got)
	}
	if got := len(tbl.Head(100)); got != 4 {
		t.Errorf("Expected all 4 rows, got %d", got)
	}
}

func TestCategoricalColumnsIncludeBoolean(t *testing.T) {
	tbl := New([]string{"flag", "sales", "when"})
	tbl.Columns[0].Type = TypeBoolean
	tbl.Columns[1].Type = TypeNumeric
	tbl.Columns[2].Type = TypeDatetime

	cats := tbl.CategoricalColumns()
	if len(cats) != 1 || cats[0] != "flag" {
		t.Errorf("Expected [flag], got %v", cats)
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := New([]string{"a", "b"})
	tbl.Rows = [][]string{{"1", "x,y"}}

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	expected := "a,b\n1,\"x,y\"\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}
}

func TestActivePath(t *testing.T) {
	ds := NewDataset("sales.csv")
	ds.RawPath = "raw.csv"
	if ds.ActivePath() != "raw.csv" {
		t.Errorf("Expected raw path before cleaning, got %q", ds.ActivePath())
	}
	ds.CleanedPath = "cleaned.csv"
	if ds.ActivePath() != "cleaned.csv" {
		t.Errorf("Expected cleaned path after cleaning, got %q", ds.ActivePath())
	}
}
