package migration

import (
	"context"

	"datalens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Runner handles database schema migrations
type Runner struct {
	version string
}

// NewRunner creates a migration runner
func NewRunner() *Runner {
	return &Runner{version: "1.0.0"}
}

// Version returns the migration version
func (r *Runner) Version() string {
	return r.version
}

// Run executes all database migrations in dependency order
func (r *Runner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDatasetsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create datasets table")
	}
	if err := r.createChartsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create charts table")
	}
	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}
	return nil
}

func (r *Runner) createDatasetsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS datasets (
		id UUID PRIMARY KEY,
		original_filename TEXT NOT NULL,
		raw_path TEXT NOT NULL DEFAULT '',
		cleaned_path TEXT NOT NULL DEFAULT '',
		file_size BIGINT NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		record_count INTEGER NOT NULL DEFAULT 0,
		field_count INTEGER NOT NULL DEFAULT 0,
		missing_cells INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'uploaded',
		error_message TEXT NOT NULL DEFAULT '',
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *Runner) createChartsTable(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS charts (
		id UUID PRIMARY KEY,
		dataset_id UUID NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		metric TEXT NOT NULL,
		dimension TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		file_path TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *Runner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_charts_dataset_id ON charts(dataset_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
