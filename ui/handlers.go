package ui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"
	"datalens/internal/report"

	"github.com/gin-gonic/gin"
)

// handleIndex renders the upload page with recent uploads
func (s *Server) handleIndex(c *gin.Context) {
	recent, err := s.service.ListRecentDatasets(c.Request.Context(), 10)
	if err != nil {
		log.Printf("[UI] Failed to list datasets: %v", err)
		recent = nil
	}
	c.HTML(http.StatusOK, "upload.html", gin.H{
		"Recent": recent,
	})
}

// handleUpload accepts a multipart CSV/XLSX upload and runs the pipeline
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.renderError(c, core.NewInvalidUploadError("no file provided"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, core.NewInvalidUploadError("could not read uploaded file"))
		return
	}
	defer file.Close()

	ds, err := s.service.ProcessUpload(c.Request.Context(), file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/datasets/"+ds.ID.String())
}

// handleDashboard renders the full dashboard for one dataset
func (s *Server) handleDashboard(c *gin.Context) {
	ds, t, ok := s.loadDataset(c)
	if !ok {
		return
	}

	summary, warnings, err := s.service.Profile(t)
	if err != nil {
		s.renderError(c, err)
		return
	}

	charts, err := s.service.ListCharts(c.Request.Context(), ds.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Dataset":        ds,
		"Summary":        summary,
		"Warnings":       warnings,
		"Cleaning":       ds.Metadata.Cleaning,
		"PreviewColumns": t.ColumnNames(),
		"PreviewRows":    t.Head(s.cfg.Profile.PreviewRows),
		"NumericCols":    t.NumericColumns(),
		"CategoricalCols": t.CategoricalColumns(),
		"DatetimeCols":   t.ColumnsOfType(table.TypeDatetime),
		"ChartKinds":     chart.Kinds(),
		"Charts":         charts,
	})
}

// handleCreateChart creates one chart from the builder form. An empty
// chart_type lets the recommendation heuristic pick.
func (s *Server) handleCreateChart(c *gin.Context) {
	ds, _, ok := s.loadDataset(c)
	if !ok {
		return
	}

	kind := c.PostForm("chart_type")
	metric := c.PostForm("metric")
	dimension := c.PostForm("dimension")

	if _, err := s.service.CreateChart(c.Request.Context(), ds, kind, metric, dimension); err != nil {
		s.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/datasets/"+ds.ID.String())
}

// handleChartArtifact serves a rendered chart SVG
func (s *Server) handleChartArtifact(c *gin.Context) {
	chartID, err := core.ParseChartID(c.Param("chartID"))
	if err != nil {
		s.renderError(c, core.NewInvalidChartRequestError(err.Error()))
		return
	}

	record, err := s.service.GetChart(c.Request.Context(), chartID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	rc, err := s.service.OpenFile(c.Request.Context(), record.FilePath)
	if err != nil {
		s.renderError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/svg+xml")
	io.Copy(c.Writer, rc)
}

// handleDownloadRaw streams the original upload back as an attachment
func (s *Server) handleDownloadRaw(c *gin.Context) {
	ds, ok := s.loadDatasetRecord(c)
	if !ok {
		return
	}
	s.streamFile(c, ds.RawPath, "raw_dataset.csv", ds.MimeType)
}

// handleDownloadCleaned streams the cleaned CSV as an attachment
func (s *Server) handleDownloadCleaned(c *gin.Context) {
	ds, ok := s.loadDatasetRecord(c)
	if !ok {
		return
	}
	if ds.CleanedPath == "" {
		s.renderError(c, core.NewNotFoundError("cleaned dataset", ds.ID.String()))
		return
	}
	s.streamFile(c, ds.CleanedPath, "cleaned_dataset.csv", "text/csv")
}

// handleSummaryWorkbook exports the insight summary as an Excel workbook
func (s *Server) handleSummaryWorkbook(c *gin.Context) {
	_, t, ok := s.loadDataset(c)
	if !ok {
		return
	}

	summary, warnings, err := s.service.Profile(t)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="insight_summary.xlsx"`)
	if err := writeSummaryWorkbook(c.Writer, summary, warnings); err != nil {
		log.Printf("[UI] Workbook export failed: %v", err)
	}
}

// handleExportReport builds the report and streams the generated PDF
func (s *Server) handleExportReport(c *gin.Context) {
	ds, ok := s.loadDatasetRecord(c)
	if !ok {
		return
	}

	var selected []core.ChartID
	for _, raw := range c.PostFormArray("selected_charts") {
		if id, err := core.ParseChartID(raw); err == nil {
			selected = append(selected, id)
		}
	}

	rep, err := s.service.BuildReport(c.Request.Context(), ds, selected)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="analysis_report.pdf"`)
	if err := s.exporter.ExportPDF(c.Request.Context(), rep, c.Writer); err != nil {
		log.Printf("[UI] PDF export failed: %v", err)
		s.renderError(c, err)
	}
}

// handleDatasetJSON returns the dataset record as JSON
func (s *Server) handleDatasetJSON(c *gin.Context) {
	ds, ok := s.loadDatasetRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ds)
}

// handleProfileJSON returns the insight summary and warnings as JSON
func (s *Server) handleProfileJSON(c *gin.Context) {
	_, t, ok := s.loadDataset(c)
	if !ok {
		return
	}
	summary, warnings, err := s.service.Profile(t)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":  summary,
		"warnings": warnings,
	})
}

// loadDatasetRecord resolves the :id parameter to a dataset record
func (s *Server) loadDatasetRecord(c *gin.Context) (*table.Dataset, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		s.renderError(c, core.NewNotFoundError("dataset", c.Param("id")))
		return nil, false
	}
	ds, err := s.service.GetDataset(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return nil, false
	}
	return ds, true
}

// loadDataset resolves the :id parameter and loads the cleaned table
func (s *Server) loadDataset(c *gin.Context) (*table.Dataset, *table.Table, bool) {
	ds, ok := s.loadDatasetRecord(c)
	if !ok {
		return nil, nil, false
	}
	t, err := s.service.LoadTable(ds)
	if err != nil {
		s.renderError(c, err)
		return nil, nil, false
	}
	return ds, t, true
}

// streamFile serves a stored media file as a download attachment
func (s *Server) streamFile(c *gin.Context, path, downloadName, contentType string) {
	rc, err := s.service.OpenFile(c.Request.Context(), path)
	if err != nil {
		s.renderError(c, core.NewNotFoundError("file", path))
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, downloadName))
	io.Copy(c.Writer, rc)
}

// writeSummaryWorkbook adapts the report workbook writer to the handler
func writeSummaryWorkbook(w io.Writer, summary *table.InsightSummary, warnings []table.Warning) error {
	return report.WriteSummaryWorkbook(summary, warnings, w)
}

// renderError maps domain errors to HTTP responses
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsInvalidUpload(err), core.IsInvalidChartRequest(err),
		errors.Is(err, core.ErrColumnNotFound),
		errors.Is(err, core.ErrNoRecommendation),
		errors.Is(err, core.ErrEmptyDataset):
		status = http.StatusBadRequest
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.Printf("[UI] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	if c.GetHeader("Accept") == "application/json" || len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.HTML(status, "error.html", gin.H{"Status": status, "Message": err.Error()})
}
