package main

import (
	"context"
	"log"

	"datalens/adapters/postgres"
	"datalens/app"
	"datalens/internal/clean"
	"datalens/internal/config"
	"datalens/internal/ingest"
	"datalens/internal/migration"
	"datalens/internal/profile"
	"datalens/internal/report"
	"datalens/internal/viz"
	"datalens/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and brings the schema up to date.
func initDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	storage := ingest.NewLocalFileStorage(cfg.Storage.MediaRoot)
	processor := ingest.NewProcessor(storage, cfg.Storage.MaxUploadMB)
	cleaner := clean.New(clean.Options{})
	profiler := profile.New(cfg.Profile)
	renderer := viz.NewRenderer()
	builder := report.NewBuilder(storage, cfg.Profile.PreviewRows)

	datasets := postgres.NewDatasetRepository(db)
	charts := postgres.NewChartRepository(db)

	service := app.NewAnalysisService(processor, cleaner, profiler, renderer, builder, storage, datasets, charts)

	exporter, err := report.NewExporter(cfg.Report)
	if err != nil {
		log.Fatalf("Failed to initialize report exporter: %v", err)
	}

	server, err := ui.NewServer(cfg, service, exporter)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Starting datalens server on port %s", cfg.Server.Port)
	log.Fatal(server.Run())
}
