package ingest

import (
	"testing"

	"datalens/domain/core"
	"datalens/domain/table"
)

func TestValidateUpload(t *testing.T) {
	p := NewProcessor(NewLocalFileStorage(t.TempDir()), 1) // 1 MB cap

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"csv accepted", "sales.csv", 1024, false},
		{"xlsx accepted", "sales.xlsx", 1024, false},
		{"xls accepted", "legacy.xls", 1024, false},
		{"uppercase extension accepted", "SALES.CSV", 1024, false},
		{"unsupported extension", "notes.txt", 1024, true},
		{"no extension", "data", 1024, true},
		{"empty filename", "", 1024, true},
		{"empty file", "sales.csv", 0, true},
		{"oversized file", "sales.csv", 2 * 1024 * 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateUpload(tt.filename, tt.size)
			if tt.wantErr && !core.IsInvalidUpload(err) {
				t.Errorf("Expected invalid upload error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestColumnTypeInference(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected table.ColumnType
	}{
		{"integers", []string{"1", "2", "3"}, table.TypeNumeric},
		{"floats", []string{"1.5", "-2", "3e2"}, table.TypeNumeric},
		{"booleans", []string{"true", "False", "yes", "N"}, table.TypeBoolean},
		{"iso dates", []string{"2024-01-01", "2024-02-15"}, table.TypeDatetime},
		{"us dates", []string{"1/15/2024", "12/1/2024"}, table.TypeDatetime},
		{"iso datetimes", []string{"2024-01-01T10:30:00", "2024-01-02 08:00"}, table.TypeDatetime},
		{"text", []string{"North", "South"}, table.TypeCategorical},
		{"mixed numeric and text", []string{"1", "two"}, table.TypeCategorical},
		{"numeric with missing", []string{"1", "", "3"}, table.TypeNumeric},
		{"all missing", []string{"", ""}, table.TypeCategorical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.values))
			for i, v := range tt.values {
				rows[i] = []string{v}
			}
			got := inferColumnType(rows, 0)
			if got != tt.expected {
				t.Errorf("Expected %s for %v, got %s", tt.expected, tt.values, got)
			}
		})
	}
}

func TestBuildTable(t *testing.T) {
	raw := &RawData{
		Headers: []string{"city", "sales", "date"},
		Rows: [][]string{
			{"Austin", "10", "2024-01-01"},
			{"Dallas", "", "2024-01-02"},
			{"Austin", "30", "2024-01-03"},
		},
	}

	tbl, err := BuildTable(raw)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	if tbl.ColumnCount() != 3 || tbl.RowCount() != 3 {
		t.Fatalf("Expected 3x3 table, got %dx%d", tbl.RowCount(), tbl.ColumnCount())
	}
	if tbl.Columns[0].Type != table.TypeCategorical {
		t.Errorf("Expected categorical city, got %s", tbl.Columns[0].Type)
	}
	if tbl.Columns[1].Type != table.TypeNumeric {
		t.Errorf("Expected numeric sales, got %s", tbl.Columns[1].Type)
	}
	if tbl.Columns[2].Type != table.TypeDatetime {
		t.Errorf("Expected datetime date, got %s", tbl.Columns[2].Type)
	}
	if tbl.Columns[1].MissingCount != 1 {
		t.Errorf("Expected 1 missing sales cell, got %d", tbl.Columns[1].MissingCount)
	}
	if tbl.Columns[0].DistinctCount != 2 {
		t.Errorf("Expected 2 distinct cities, got %d", tbl.Columns[0].DistinctCount)
	}
	if len(tbl.Columns[0].SampleValues) == 0 || tbl.Columns[0].SampleValues[0] != "Austin" {
		t.Errorf("Expected sample values starting with Austin, got %v", tbl.Columns[0].SampleValues)
	}
}

func TestBuildTableRejectsHeaderlessData(t *testing.T) {
	_, err := BuildTable(&RawData{})
	if !core.IsInvalidUpload(err) {
		t.Errorf("Expected invalid upload error, got %v", err)
	}
}
