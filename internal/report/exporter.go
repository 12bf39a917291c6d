package report

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"

	"datalens/internal/config"
	"datalens/internal/errors"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Exporter renders a Report to HTML and converts it to PDF through
// wkhtmltopdf
type Exporter struct {
	tmpl *template.Template
}

// NewExporter parses the report template and configures the PDF toolchain.
// An explicit wkhtmltopdf binary path in the config overrides PATH lookup.
func NewExporter(cfg config.ReportConfig) (*Exporter, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse report template")
	}
	if cfg.WkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(cfg.WkhtmltopdfPath)
	}
	return &Exporter{tmpl: tmpl}, nil
}

// RenderHTML renders the report to a standalone HTML document
func (e *Exporter) RenderHTML(rep *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, "report.html", rep); err != nil {
		return nil, errors.Wrap(err, "failed to render report template")
	}
	return buf.Bytes(), nil
}

// ExportPDF renders the report and streams the generated PDF to w
func (e *Exporter) ExportPDF(ctx context.Context, rep *Report, w io.Writer) error {
	html, err := e.RenderHTML(rep)
	if err != nil {
		return err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return errors.WithCode(errors.CodeReportExport,
			errors.Wrap(err, "wkhtmltopdf is not available"))
	}

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)
	pdfg.MarginTop.Set(12)
	pdfg.MarginBottom.Set(12)

	if err := pdfg.CreateContext(ctx); err != nil {
		return errors.WithCode(errors.CodeReportExport,
			errors.Wrap(err, "PDF generation failed"))
	}

	if _, err := io.Copy(w, pdfg.Buffer()); err != nil {
		return errors.Wrap(err, "failed to write PDF output")
	}
	return nil
}
