// Package report assembles dashboard state into a printable document and
// exports it as PDF or as an Excel workbook.
package report

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"datalens/domain/chart"
	"datalens/domain/table"
	"datalens/internal/ingest"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"
)

// ChartArtifact is one rendered chart ready for embedding
type ChartArtifact struct {
	Title string
	Kind  chart.Kind
	SVG   template.HTML
}

// Report is the assembled snapshot handed to the exporter: dataset preview,
// cleaning outcome, insight summary, warnings and the selected charts.
type Report struct {
	Dataset        *table.Dataset
	PreviewColumns []string
	PreviewRows    [][]string
	Summary        *table.InsightSummary
	Warnings       []table.Warning
	Cleaning       table.CleaningReport
	InsightsHTML   template.HTML
	Charts         []ChartArtifact
	GeneratedAt    time.Time
}

// Builder assembles reports, loading chart artifacts from media storage
type Builder struct {
	storage     ingest.FileStorage
	previewRows int
}

// NewBuilder creates a report builder
func NewBuilder(storage ingest.FileStorage, previewRows int) *Builder {
	return &Builder{storage: storage, previewRows: previewRows}
}

// Build assembles a report. Chart SVGs are loaded concurrently; their order
// in the result matches the input order.
func (b *Builder) Build(ctx context.Context, ds *table.Dataset, t *table.Table,
	summary *table.InsightSummary, warnings []table.Warning, charts []*chart.Chart) (*Report, error) {

	rep := &Report{
		Dataset:        ds,
		PreviewColumns: t.ColumnNames(),
		PreviewRows:    t.Head(b.previewRows),
		Summary:        summary,
		Warnings:       warnings,
		Cleaning:       ds.Metadata.Cleaning,
		InsightsHTML:   renderInsights(summary.Insights),
		Charts:         make([]ChartArtifact, len(charts)),
		GeneratedAt:    time.Now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range charts {
		i, c := i, c
		g.Go(func() error {
			svg, err := b.loadSVG(gctx, c.FilePath)
			if err != nil {
				return fmt.Errorf("loading chart %q: %w", c.Title, err)
			}
			rep.Charts[i] = ChartArtifact{Title: c.Title, Kind: c.Kind, SVG: svg}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rep, nil
}

func (b *Builder) loadSVG(ctx context.Context, path string) (template.HTML, error) {
	rc, err := b.storage.GetReader(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	// The artifact is produced by our own renderer, safe to inline
	return template.HTML(data), nil
}

// renderInsights turns the narrative insight lines into an HTML list via
// the markdown renderer
func renderInsights(insights []string) template.HTML {
	var md strings.Builder
	for _, line := range insights {
		md.WriteString("- ")
		md.WriteString(line)
		md.WriteString("\n")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	out := markdown.ToHTML([]byte(md.String()), p, renderer)
	return template.HTML(out)
}
