package ingest

import (
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	src := strings.NewReader("city, sales ,date\nAustin,10,2024-01-01\nDallas,,2024-01-02\n")

	raw, err := ReadCSV(src)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if len(raw.Headers) != 3 {
		t.Fatalf("Expected 3 headers, got %d", len(raw.Headers))
	}
	// headers are trimmed
	if raw.Headers[1] != "sales" {
		t.Errorf("Expected trimmed header sales, got %q", raw.Headers[1])
	}
	if len(raw.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(raw.Rows))
	}
	if raw.Rows[1][1] != "" {
		t.Errorf("Expected empty cell preserved, got %q", raw.Rows[1][1])
	}
}

func TestReadCSVPadsRaggedRows(t *testing.T) {
	src := strings.NewReader("a,b,c\n1,2\n1,2,3,4\n")

	raw, err := ReadCSV(src)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	for i, row := range raw.Rows {
		if len(row) != 3 {
			t.Errorf("Row %d has width %d, expected 3", i, len(row))
		}
	}
	if raw.Rows[0][2] != "" {
		t.Errorf("Short row should be padded with empty cells, got %q", raw.Rows[0][2])
	}
	if raw.Rows[1][2] != "3" {
		t.Errorf("Long row should be truncated to header width, got %q", raw.Rows[1][2])
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty input")
	}
}
