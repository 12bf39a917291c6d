// Package ui is the gin web layer: upload page, dataset dashboard, chart
// endpoints, downloads and the report export.
package ui

import (
	"embed"
	"fmt"
	"html/template"

	"datalens/app"
	"datalens/internal/config"
	"datalens/internal/report"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Server is the web server for the analytics dashboard
type Server struct {
	router   *gin.Engine
	service  *app.AnalysisService
	exporter *report.Exporter
	cfg      *config.Config
}

// NewServer creates the server, parses templates and registers routes
func NewServer(cfg *config.Config, service *app.AnalysisService, exporter *report.Exporter) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	funcMap := template.FuncMap{
		"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:   gin.Default(),
		service:  service,
		exporter: exporter,
		cfg:      cfg,
	}
	s.router.SetHTMLTemplate(templates)
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)

	s.router.GET("/datasets/:id", s.handleDashboard)
	s.router.POST("/datasets/:id/charts", s.handleCreateChart)
	s.router.GET("/datasets/:id/charts/:chartID", s.handleChartArtifact)

	s.router.GET("/datasets/:id/raw.csv", s.handleDownloadRaw)
	s.router.GET("/datasets/:id/cleaned.csv", s.handleDownloadCleaned)
	s.router.GET("/datasets/:id/summary.xlsx", s.handleSummaryWorkbook)
	s.router.POST("/datasets/:id/report.pdf", s.handleExportReport)

	// JSON mirrors for programmatic access
	s.router.GET("/api/datasets/:id", s.handleDatasetJSON)
	s.router.GET("/api/datasets/:id/profile", s.handleProfileJSON)
}

// Run starts the HTTP server
func (s *Server) Run() error {
	return s.router.Run(":" + s.cfg.Server.Port)
}
