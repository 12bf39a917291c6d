package table

import (
	"time"

	"datalens/domain/core"
)

// Status tracks a dataset through the upload pipeline
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusCleaned  Status = "cleaned"
	StatusFailed   Status = "failed"
)

// Dataset is the persisted metadata record for one uploaded file. The cell
// data itself lives on disk (raw and cleaned CSV); this record carries the
// shape, column metadata and cleaning outcome.
type Dataset struct {
	ID               core.DatasetID  `json:"id" db:"id"`
	OriginalFilename string          `json:"original_filename" db:"original_filename"`
	RawPath          string          `json:"raw_path" db:"raw_path"`
	CleanedPath      string          `json:"cleaned_path" db:"cleaned_path"`
	FileSize         int64           `json:"file_size" db:"file_size"`
	MimeType         string          `json:"mime_type" db:"mime_type"`
	RecordCount      int             `json:"record_count" db:"record_count"`
	FieldCount       int             `json:"field_count" db:"field_count"`
	MissingCells     int             `json:"missing_cells" db:"missing_cells"`
	Status           Status          `json:"status" db:"status"`
	ErrorMessage     string          `json:"error_message,omitempty" db:"error_message"`
	Metadata         DatasetMetadata `json:"metadata" db:"-"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// DatasetMetadata is stored as a JSON column alongside the dataset row
type DatasetMetadata struct {
	Columns  []Column       `json:"columns"`
	Cleaning CleaningReport `json:"cleaning"`
}

// NewDataset creates a dataset record in the uploaded state
func NewDataset(filename string) *Dataset {
	now := time.Now()
	return &Dataset{
		ID:               core.DatasetID(core.NewID()),
		OriginalFilename: filename,
		Status:           StatusUploaded,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ActivePath returns the cleaned file when present, otherwise the raw file
func (d *Dataset) ActivePath() string {
	if d.CleanedPath != "" {
		return d.CleanedPath
	}
	return d.RawPath
}
