// Package ingest handles file uploads: validation, persistence to media
// storage, parsing, and column type inference.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"datalens/domain/core"
	"datalens/domain/table"
)

const sampleValuesPerColumn = 5

// Processor validates and parses uploaded dataset files
type Processor struct {
	storage     FileStorage
	maxFileSize int64
}

// NewProcessor creates a processor writing uploads through the given storage
func NewProcessor(storage FileStorage, maxUploadMB int64) *Processor {
	return &Processor{
		storage:     storage,
		maxFileSize: maxUploadMB * 1024 * 1024,
	}
}

// ValidateUpload checks filename and size before any parsing happens
func (p *Processor) ValidateUpload(filename string, size int64) error {
	if filename == "" {
		return core.NewInvalidUploadError("no filename provided")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".xlsx", ".xls":
	default:
		return core.NewInvalidUploadError(fmt.Sprintf("unsupported file extension %q", ext))
	}
	if size <= 0 {
		return core.NewInvalidUploadError("file is empty")
	}
	if size > p.maxFileSize {
		return core.NewInvalidUploadError(
			fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", size, p.maxFileSize))
	}
	return nil
}

// StoreUpload persists the raw upload and returns its storage path
func (p *Processor) StoreUpload(ctx context.Context, src io.Reader, filename string) (string, error) {
	return p.storage.Store(ctx, src, "datasets", filename)
}

// LoadTable reads a stored file and builds a typed table from it
func (p *Processor) LoadTable(path string) (*table.Table, error) {
	raw, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, core.NewInvalidUploadError(err.Error())
	}
	return BuildTable(raw)
}

// BuildTable converts parsed raw data into a table with inferred column
// types and per-column missing/distinct counts
func BuildTable(raw *RawData) (*table.Table, error) {
	if len(raw.Headers) == 0 {
		return nil, core.NewInvalidUploadError("no columns found")
	}

	t := table.New(raw.Headers)
	t.Rows = raw.Rows

	for i := range t.Columns {
		t.Columns[i].Type = inferColumnType(raw.Rows, i)
		t.Columns[i].SampleValues = sampleValues(raw.Rows, i, sampleValuesPerColumn)
	}
	t.RefreshColumnStats()

	return t, nil
}

// inferColumnType classifies a column from its non-missing values. The
// checks run most-specific first; a column only gets a type when every
// value fits it.
func inferColumnType(rows [][]string, colIndex int) table.ColumnType {
	allBoolean := true
	allDate := true
	allNumeric := true
	seen := 0

	for _, row := range rows {
		if colIndex >= len(row) || row[colIndex] == "" {
			continue
		}
		seen++
		value := row[colIndex]

		if allBoolean && !isBooleanToken(value) {
			allBoolean = false
		}
		if allDate && !isLikelyDate(value) {
			allDate = false
		}
		if allNumeric {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				allNumeric = false
			}
		}
		if !allBoolean && !allDate && !allNumeric {
			break
		}
	}

	if seen == 0 {
		return table.TypeCategorical
	}
	switch {
	case allBoolean:
		return table.TypeBoolean
	case allDate:
		return table.TypeDatetime
	case allNumeric:
		return table.TypeNumeric
	default:
		return table.TypeCategorical
	}
}

func isBooleanToken(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "y", "n":
		return true
	}
	return false
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),              // YYYY-MM-DD
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),          // MM/DD/YYYY, DD/MM/YYYY
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),          // DD-MM-YYYY
	regexp.MustCompile(`^\d{4}/\d{2}/\d{2}$`),              // YYYY/MM/DD
	regexp.MustCompile(`^[A-Za-z]{3,9} \d{1,2}, \d{4}$`),   // Month DD, YYYY
	regexp.MustCompile(`^\d{1,2} [A-Za-z]{3,9} \d{4}$`),    // DD Month YYYY
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`), // ISO datetime prefix
}

func isLikelyDate(value string) bool {
	for _, pattern := range datePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

func sampleValues(rows [][]string, colIndex, limit int) []string {
	var samples []string
	for _, row := range rows {
		if colIndex < len(row) && row[colIndex] != "" {
			samples = append(samples, row[colIndex])
			if len(samples) >= limit {
				break
			}
		}
	}
	return samples
}
