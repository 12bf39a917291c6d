package app

import (
	"context"
	"strings"
	"testing"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/clean"
	"datalens/internal/config"
	"datalens/internal/ingest"
	"datalens/internal/profile"
	"datalens/internal/report"
	"datalens/internal/viz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repositories for exercising the pipeline without a database

type memDatasetRepo struct {
	byID map[core.DatasetID]*table.Dataset
}

func newMemDatasetRepo() *memDatasetRepo {
	return &memDatasetRepo{byID: map[core.DatasetID]*table.Dataset{}}
}

func (r *memDatasetRepo) Create(ctx context.Context, ds *table.Dataset) error {
	r.byID[ds.ID] = ds
	return nil
}

func (r *memDatasetRepo) Update(ctx context.Context, ds *table.Dataset) error {
	r.byID[ds.ID] = ds
	return nil
}

func (r *memDatasetRepo) GetByID(ctx context.Context, id core.DatasetID) (*table.Dataset, error) {
	ds, ok := r.byID[id]
	if !ok {
		return nil, core.NewNotFoundError("dataset", id.String())
	}
	return ds, nil
}

func (r *memDatasetRepo) ListRecent(ctx context.Context, limit int) ([]*table.Dataset, error) {
	out := make([]*table.Dataset, 0, len(r.byID))
	for _, ds := range r.byID {
		out = append(out, ds)
	}
	return out, nil
}

func (r *memDatasetRepo) Delete(ctx context.Context, id core.DatasetID) error {
	delete(r.byID, id)
	return nil
}

type memChartRepo struct {
	charts []*chart.Chart
}

func (r *memChartRepo) Create(ctx context.Context, c *chart.Chart) error {
	r.charts = append(r.charts, c)
	return nil
}

func (r *memChartRepo) GetByID(ctx context.Context, id core.ChartID) (*chart.Chart, error) {
	for _, c := range r.charts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, core.NewNotFoundError("chart", id.String())
}

func (r *memChartRepo) ListByDataset(ctx context.Context, datasetID core.DatasetID) ([]*chart.Chart, error) {
	var out []*chart.Chart
	for _, c := range r.charts {
		if c.DatasetID == datasetID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memChartRepo) Delete(ctx context.Context, id core.ChartID) error {
	for i, c := range r.charts {
		if c.ID == id {
			r.charts = append(r.charts[:i], r.charts[i+1:]...)
			return nil
		}
	}
	return nil
}

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	storage := ingest.NewLocalFileStorage(t.TempDir())
	cfg := config.ProfileConfig{
		OutlierIQRMult:   1.5,
		SkewThreshold:    1.0,
		CardinalityRatio: 0.5,
		TopValues:        5,
		PreviewRows:      10,
	}
	return NewAnalysisService(
		ingest.NewProcessor(storage, 10),
		clean.New(clean.Options{}),
		profile.New(cfg),
		viz.NewRenderer(),
		report.NewBuilder(storage, cfg.PreviewRows),
		storage,
		newMemDatasetRepo(),
		&memChartRepo{},
	)
}

const sampleCSV = `region,sales,order_date
North,10,2024-01-01
South,,2024-01-02
North,10,2024-01-01
East,20,2024-01-03
West,30,2024-01-04
`

func uploadSample(t *testing.T, svc *AnalysisService) *table.Dataset {
	t.Helper()
	ds, err := svc.ProcessUpload(context.Background(), strings.NewReader(sampleCSV), "sales.csv", int64(len(sampleCSV)))
	require.NoError(t, err)
	return ds
}

func TestProcessUploadPipeline(t *testing.T) {
	svc := newTestService(t)
	ds := uploadSample(t, svc)

	// one exact duplicate row dropped, one missing value filled
	assert.Equal(t, 4, ds.RecordCount)
	assert.Equal(t, 3, ds.FieldCount)
	assert.Equal(t, 0, ds.MissingCells)
	assert.Equal(t, table.StatusCleaned, ds.Status)
	assert.Equal(t, 1, ds.Metadata.Cleaning.DuplicatesRemoved)
	assert.Equal(t, 1, ds.Metadata.Cleaning.FilledByColumn["sales"])
	assert.NotEmpty(t, ds.RawPath)
	assert.NotEmpty(t, ds.CleanedPath)
	assert.Equal(t, "text/csv", ds.MimeType)

	stored, err := svc.GetDataset(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, stored.ID)
}

func TestProcessUploadRejectsBadFiles(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessUpload(context.Background(), strings.NewReader("hi"), "notes.txt", 2)
	assert.True(t, core.IsInvalidUpload(err), "got %v", err)

	_, err = svc.ProcessUpload(context.Background(), strings.NewReader(""), "empty.csv", 0)
	assert.True(t, core.IsInvalidUpload(err), "got %v", err)
}

func TestLoadTableKeepsRecordedColumnTypes(t *testing.T) {
	svc := newTestService(t)
	ds := uploadSample(t, svc)

	tbl, err := svc.LoadTable(ds)
	require.NoError(t, err)

	col, err := tbl.Column("order_date")
	require.NoError(t, err)
	assert.Equal(t, table.TypeDatetime, col.Type)
	col, err = tbl.Column("sales")
	require.NoError(t, err)
	assert.Equal(t, table.TypeNumeric, col.Type)
}

func TestCreateChartExplicitKind(t *testing.T) {
	svc := newTestService(t)
	ds := uploadSample(t, svc)
	ctx := context.Background()

	c, err := svc.CreateChart(ctx, ds, "bar", "sales", "region")
	require.NoError(t, err)
	assert.Equal(t, chart.KindBar, c.Kind)
	assert.Equal(t, "sales by region", c.Title)
	assert.NotEmpty(t, c.FilePath)

	rc, err := svc.OpenFile(ctx, c.FilePath)
	require.NoError(t, err)
	rc.Close()

	listed, err := svc.ListCharts(ctx, ds.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, c.ID, listed[0].ID)
}

func TestCreateChartRecommendsKind(t *testing.T) {
	svc := newTestService(t)
	ds := uploadSample(t, svc)
	ctx := context.Background()

	// numeric metric alone recommends a histogram and drops the dimension
	c, err := svc.CreateChart(ctx, ds, "", "sales", "")
	require.NoError(t, err)
	assert.Equal(t, chart.KindHistogram, c.Kind)
	assert.Empty(t, c.Dimension)

	// numeric by low-cardinality categorical recommends a pie
	c, err = svc.CreateChart(ctx, ds, "", "sales", "region")
	require.NoError(t, err)
	assert.Equal(t, chart.KindPie, c.Kind)
}

func TestCreateChartRejectsIncompatibleRequest(t *testing.T) {
	svc := newTestService(t)
	ds := uploadSample(t, svc)

	_, err := svc.CreateChart(context.Background(), ds, "scatter", "region", "order_date")
	assert.True(t, core.IsInvalidChartRequest(err), "got %v", err)
}

func TestBuildReportFiltersSelectedCharts(t *testing.T) {
	svc := newTestService(t)
	ds := uploadSample(t, svc)
	ctx := context.Background()

	first, err := svc.CreateChart(ctx, ds, "bar", "sales", "region")
	require.NoError(t, err)
	second, err := svc.CreateChart(ctx, ds, "histogram", "sales", "")
	require.NoError(t, err)

	rep, err := svc.BuildReport(ctx, ds, nil)
	require.NoError(t, err)
	assert.Len(t, rep.Charts, 2)
	assert.Equal(t, first.Title, rep.Charts[0].Title)

	rep, err = svc.BuildReport(ctx, ds, []core.ChartID{second.ID})
	require.NoError(t, err)
	require.Len(t, rep.Charts, 1)
	assert.Equal(t, second.Title, rep.Charts[0].Title)

	assert.Equal(t, 4, rep.Summary.RowCount)
	assert.NotEmpty(t, rep.Summary.Insights)
	assert.Equal(t, 1, rep.Cleaning.DuplicatesRemoved)
}
