// Package app wires the pipeline components into the operations the web
// layer exposes: upload processing, chart creation and report assembly.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal"
	"datalens/internal/clean"
	"datalens/internal/ingest"
	"datalens/internal/profile"
	"datalens/internal/report"
	"datalens/internal/viz"
	"datalens/ports"
)

// AnalysisService runs the upload -> clean -> profile -> chart -> report
// pipeline. Every operation is synchronous; a failing request aborts with an
// error and leaves no partial in-memory state behind.
type AnalysisService struct {
	processor *ingest.Processor
	cleaner   *clean.Cleaner
	profiler  *profile.Profiler
	renderer  *viz.Renderer
	builder   *report.Builder
	storage   ingest.FileStorage
	datasets  ports.DatasetRepository
	charts    ports.ChartRepository
}

// NewAnalysisService creates the service with all pipeline dependencies
func NewAnalysisService(
	processor *ingest.Processor,
	cleaner *clean.Cleaner,
	profiler *profile.Profiler,
	renderer *viz.Renderer,
	builder *report.Builder,
	storage ingest.FileStorage,
	datasets ports.DatasetRepository,
	charts ports.ChartRepository,
) *AnalysisService {
	return &AnalysisService{
		processor: processor,
		cleaner:   cleaner,
		profiler:  profiler,
		renderer:  renderer,
		builder:   builder,
		storage:   storage,
		datasets:  datasets,
		charts:    charts,
	}
}

// ProcessUpload runs the full ingest and cleaning pass for one uploaded
// file and persists the dataset record
func (s *AnalysisService) ProcessUpload(ctx context.Context, src io.Reader, filename string, size int64) (*table.Dataset, error) {
	if err := s.processor.ValidateUpload(filename, size); err != nil {
		return nil, err
	}

	rawPath, err := s.processor.StoreUpload(ctx, src, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	raw, err := s.processor.LoadTable(rawPath)
	if err != nil {
		return nil, err
	}

	cleaned, cleaningReport := s.cleaner.Clean(raw)
	internal.DefaultLogger.Info("Cleaned %q: %d duplicates removed, %d values filled",
		filename, cleaningReport.DuplicatesRemoved, cleaningReport.TotalFilled())

	var buf bytes.Buffer
	if err := cleaned.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode cleaned CSV: %w", err)
	}
	cleanedPath, err := s.storage.Store(ctx, &buf, "cleaned", csvName(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to store cleaned CSV: %w", err)
	}

	ds := table.NewDataset(filename)
	ds.RawPath = rawPath
	ds.CleanedPath = cleanedPath
	ds.FileSize = size
	ds.MimeType = mimeTypeFor(filename)
	ds.RecordCount = cleaned.RowCount()
	ds.FieldCount = cleaned.ColumnCount()
	ds.MissingCells = cleaned.MissingCells()
	ds.Status = table.StatusCleaned
	ds.Metadata = table.DatasetMetadata{
		Columns:  cleaned.Columns,
		Cleaning: cleaningReport,
	}

	if err := s.datasets.Create(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to persist dataset: %w", err)
	}

	internal.DefaultLogger.Info("Dataset %s ready: %d rows, %d columns", ds.ID, ds.RecordCount, ds.FieldCount)
	return ds, nil
}

// GetDataset loads a dataset record
func (s *AnalysisService) GetDataset(ctx context.Context, id core.DatasetID) (*table.Dataset, error) {
	return s.datasets.GetByID(ctx, id)
}

// ListRecentDatasets returns the latest uploads for the index page
func (s *AnalysisService) ListRecentDatasets(ctx context.Context, limit int) ([]*table.Dataset, error) {
	return s.datasets.ListRecent(ctx, limit)
}

// LoadTable reads the dataset's active (cleaned) file back into a typed
// table. Column types recorded at upload time win over re-inference, so a
// datetime column stays datetime after constant fills.
func (s *AnalysisService) LoadTable(ds *table.Dataset) (*table.Table, error) {
	t, err := s.processor.LoadTable(ds.ActivePath())
	if err != nil {
		return nil, err
	}
	for i := range t.Columns {
		for _, recorded := range ds.Metadata.Columns {
			if recorded.Name == t.Columns[i].Name {
				t.Columns[i].Type = recorded.Type
				break
			}
		}
	}
	return t, nil
}

// Profile computes the insight summary and warnings for a table
func (s *AnalysisService) Profile(t *table.Table) (*table.InsightSummary, []table.Warning, error) {
	return s.profiler.Summarize(t)
}

// CreateChart validates, renders and persists one chart. An empty kind asks
// the recommendation heuristic to pick one.
func (s *AnalysisService) CreateChart(ctx context.Context, ds *table.Dataset, kind, metric, dimension string) (*chart.Chart, error) {
	t, err := s.LoadTable(ds)
	if err != nil {
		return nil, err
	}

	var req chart.Request
	if kind == "" {
		recommended, err := viz.Recommend(t, metric, dimension)
		if err != nil {
			return nil, err
		}
		req = chart.Request{Kind: recommended, Metric: metric, Dimension: dimension}
		// histogram takes no dimension even when one was submitted
		if recommended == chart.KindHistogram {
			req.Dimension = ""
		}
	} else {
		parsed, err := chart.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		req = chart.Request{Kind: parsed, Metric: metric, Dimension: dimension}
	}

	svg, err := s.renderer.Render(t, req)
	if err != nil {
		return nil, err
	}

	record := chart.NewChart(ds.ID, req)
	filePath, err := s.storage.Store(ctx, strings.NewReader(svg), "charts", record.ID.String()+".svg")
	if err != nil {
		return nil, fmt.Errorf("failed to store chart artifact: %w", err)
	}
	record.FilePath = filePath

	if err := s.charts.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist chart: %w", err)
	}

	internal.DefaultLogger.Info("Chart %s created: %s", record.ID, record.Title)
	return record, nil
}

// GetChart loads one chart record
func (s *AnalysisService) GetChart(ctx context.Context, id core.ChartID) (*chart.Chart, error) {
	return s.charts.GetByID(ctx, id)
}

// ListCharts returns the dataset's charts in creation order
func (s *AnalysisService) ListCharts(ctx context.Context, datasetID core.DatasetID) ([]*chart.Chart, error) {
	return s.charts.ListByDataset(ctx, datasetID)
}

// BuildReport assembles the report snapshot. When selected is non-empty,
// only the named charts are included, in their stored order.
func (s *AnalysisService) BuildReport(ctx context.Context, ds *table.Dataset, selected []core.ChartID) (*report.Report, error) {
	t, err := s.LoadTable(ds)
	if err != nil {
		return nil, err
	}
	summary, warnings, err := s.profiler.Summarize(t)
	if err != nil {
		return nil, err
	}

	charts, err := s.charts.ListByDataset(ctx, ds.ID)
	if err != nil {
		return nil, err
	}
	if len(selected) > 0 {
		wanted := make(map[core.ChartID]struct{}, len(selected))
		for _, id := range selected {
			wanted[id] = struct{}{}
		}
		filtered := charts[:0]
		for _, c := range charts {
			if _, ok := wanted[c.ID]; ok {
				filtered = append(filtered, c)
			}
		}
		charts = filtered
	}

	return s.builder.Build(ctx, ds, t, summary, warnings, charts)
}

// OpenFile returns a reader over a stored media file
func (s *AnalysisService) OpenFile(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.storage.GetReader(ctx, path)
}

func csvName(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base + "_cleaned.csv"
}

func mimeTypeFor(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return "text/csv"
	case strings.HasSuffix(lower, ".xlsx"):
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case strings.HasSuffix(lower, ".xls"):
		return "application/vnd.ms-excel"
	default:
		return "application/octet-stream"
	}
}
