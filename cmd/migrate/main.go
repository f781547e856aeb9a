package main

import (
	"context"
	"log"
	"os"

	"sliceinsight/adapters/db/postgres/migrations"
	"sliceinsight/adapters/payload"
	"sliceinsight/adapters/postgres"
	"sliceinsight/internal"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [payload.json]")
	}

	databaseURL := os.Args[1]
	logger := internal.NewDefaultLogger()
	ctx := context.Background()

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migrator := migrations.NewMigrator(db, logger)
	if err := migrator.Up(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	statuses, err := migrator.Status(ctx)
	if err != nil {
		log.Fatalf("Failed to read migration status: %v", err)
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		log.Printf("  %s: %s", s.Name, state)
	}

	if len(os.Args) < 3 {
		return
	}

	payloadFile := os.Args[2]
	metrics, err := payload.NewFileSource(payloadFile, logger).LoadMetrics(ctx)
	if err != nil {
		log.Fatalf("Failed to load payload: %v", err)
	}

	repo := postgres.NewMetricRepository(db, "", logger)
	reportID, err := repo.SaveMetrics(ctx, metrics)
	if err != nil {
		log.Fatalf("Failed to import %s: %v", payloadFile, err)
	}
	log.Printf("Imported %d metrics from %s as report %s", len(metrics), payloadFile, reportID)
	log.Printf("Serve it with INSIGHT_REPORT_ID=%s", reportID)
}
