// Package ports defines the persistence interfaces the web layer and
// pipeline depend on. Adapters implement them.
package ports

import (
	"context"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"
)

// DatasetRepository provides access to persisted dataset metadata
type DatasetRepository interface {
	Create(ctx context.Context, ds *table.Dataset) error
	Update(ctx context.Context, ds *table.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*table.Dataset, error)
	ListRecent(ctx context.Context, limit int) ([]*table.Dataset, error)
	Delete(ctx context.Context, id core.DatasetID) error
}

// ChartRepository provides access to persisted chart records
type ChartRepository interface {
	Create(ctx context.Context, c *chart.Chart) error
	GetByID(ctx context.Context, id core.ChartID) (*chart.Chart, error)
	ListByDataset(ctx context.Context, datasetID core.DatasetID) ([]*chart.Chart, error)
	Delete(ctx context.Context, id core.ChartID) error
}
