package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawData is the tabular content of a parsed file before type inference.
// Cells are trimmed; the empty string marks a missing value.
type RawData struct {
	Headers []string
	Rows    [][]string
}

// DataReader reads CSV and Excel files into RawData
type DataReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// NewDataReader creates a reader for the given file, choosing the parser
// from the file extension
func NewDataReader(filePath string) *DataReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xls":
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData parses the file into headers plus data rows
func (r *DataReader) ReadData() (*RawData, error) {
	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadCSV parses CSV content from a reader. Exposed separately so uploads
// can be parsed without touching disk twice.
func ReadCSV(src io.Reader) (*RawData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, pad below

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	return normalize(records), nil
}

func (r *DataReader) readCSV() (*RawData, error) {
	file, err := openFile(r.filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file)
}

func (r *DataReader) readExcel() (*RawData, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	return normalize(records), nil
}

func openFile(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return file, nil
}

// normalize trims cells and pads short rows so every row matches the header
// width. The first record is taken as the header row.
func normalize(records [][]string) *RawData {
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([][]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]string, len(headers))
		for i := range headers {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return &RawData{Headers: headers, Rows: rows}
}
