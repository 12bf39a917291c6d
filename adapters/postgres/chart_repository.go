package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
)

// chartRepository implements ports.ChartRepository
type chartRepository struct {
	db *sqlx.DB
}

// NewChartRepository creates a new chart repository
func NewChartRepository(db *sqlx.DB) ports.ChartRepository {
	return &chartRepository{db: db}
}

// Create inserts a chart record
func (r *chartRepository) Create(ctx context.Context, c *chart.Chart) error {
	query := `INSERT INTO charts (id, dataset_id, kind, metric, dimension, title, file_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.DatasetID, c.Kind, c.Metric, c.Dimension, c.Title, c.FilePath, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	return nil
}

// GetByID retrieves a chart by its ID
func (r *chartRepository) GetByID(ctx context.Context, id core.ChartID) (*chart.Chart, error) {
	query := `SELECT id, dataset_id, kind, metric, dimension, title, file_path, created_at
		FROM charts WHERE id = $1`

	var c chart.Chart
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("chart", id.String())
		}
		return nil, fmt.Errorf("failed to get chart: %w", err)
	}
	return &c, nil
}

// ListByDataset returns all charts for a dataset in creation order
func (r *chartRepository) ListByDataset(ctx context.Context, datasetID core.DatasetID) ([]*chart.Chart, error) {
	query := `SELECT id, dataset_id, kind, metric, dimension, title, file_path, created_at
		FROM charts WHERE dataset_id = $1 ORDER BY created_at ASC`

	var charts []*chart.Chart
	if err := r.db.SelectContext(ctx, &charts, query, datasetID); err != nil {
		return nil, fmt.Errorf("failed to list charts: %w", err)
	}
	return charts, nil
}

// Delete removes a chart record
func (r *chartRepository) Delete(ctx context.Context, id core.ChartID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM charts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chart: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return core.NewNotFoundError("chart", id.String())
	}
	return nil
}
