// Package postgres implements the persistence ports against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
)

// datasetRepository implements ports.DatasetRepository
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

const datasetColumns = `id, original_filename, raw_path, cleaned_path, file_size, mime_type,
	record_count, field_count, missing_cells, status, error_message, metadata, created_at, updated_at`

// Create inserts a new dataset record
func (r *datasetRepository) Create(ctx context.Context, ds *table.Dataset) error {
	metadataJSON, err := json.Marshal(ds.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `INSERT INTO datasets (` + datasetColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
	)`

	_, err = r.db.ExecContext(ctx, query,
		ds.ID, ds.OriginalFilename, ds.RawPath, ds.CleanedPath, ds.FileSize, ds.MimeType,
		ds.RecordCount, ds.FieldCount, ds.MissingCells, ds.Status, ds.ErrorMessage,
		metadataJSON, ds.CreatedAt, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// Update replaces an existing dataset record
func (r *datasetRepository) Update(ctx context.Context, ds *table.Dataset) error {
	metadataJSON, err := json.Marshal(ds.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `UPDATE datasets SET
		original_filename = $2, raw_path = $3, cleaned_path = $4, file_size = $5,
		mime_type = $6, record_count = $7, field_count = $8, missing_cells = $9,
		status = $10, error_message = $11, metadata = $12, updated_at = $13
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		ds.ID, ds.OriginalFilename, ds.RawPath, ds.CleanedPath, ds.FileSize,
		ds.MimeType, ds.RecordCount, ds.FieldCount, ds.MissingCells,
		ds.Status, ds.ErrorMessage, metadataJSON, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return core.NewNotFoundError("dataset", ds.ID.String())
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*table.Dataset, error) {
	query := `SELECT ` + datasetColumns + ` FROM datasets WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	ds, err := scanDataset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("dataset", id.String())
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return ds, nil
}

// ListRecent returns the most recently uploaded datasets
func (r *datasetRepository) ListRecent(ctx context.Context, limit int) ([]*table.Dataset, error) {
	query := `SELECT ` + datasetColumns + ` FROM datasets ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*table.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// Delete removes a dataset and, via cascade, its charts
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return core.NewNotFoundError("dataset", id.String())
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*table.Dataset, error) {
	var ds table.Dataset
	var metadataJSON []byte

	err := row.Scan(
		&ds.ID, &ds.OriginalFilename, &ds.RawPath, &ds.CleanedPath, &ds.FileSize, &ds.MimeType,
		&ds.RecordCount, &ds.FieldCount, &ds.MissingCells, &ds.Status, &ds.ErrorMessage,
		&metadataJSON, &ds.CreatedAt, &ds.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &ds.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &ds, nil
}
