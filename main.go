package main

import (
	"context"
	"log"
	"time"

	"sliceinsight/adapters/db/postgres/migrations"
	"sliceinsight/adapters/payload"
	"sliceinsight/adapters/postgres"
	"sliceinsight/app"
	"sliceinsight/domain/core"
	"sliceinsight/domain/insight"
	"sliceinsight/internal"
	"sliceinsight/internal/config"
	"sliceinsight/internal/drilldown"
	"sliceinsight/internal/errors"
	"sliceinsight/ports"
	"sliceinsight/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies pending migrations
func initDatabase(ctx context.Context, appConfig *config.Config, logger *internal.Logger) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := migrations.NewMigrator(db, logger).Up(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// newMetricSource picks postgres when a database is configured, then the
// payload file. With neither, payloads only arrive over HTTP.
func newMetricSource(ctx context.Context, appConfig *config.Config, logger *internal.Logger) (ports.MetricSource, func(), error) {
	if appConfig.Database.URL != "" {
		reportID, err := core.ParseReportID(appConfig.Database.ReportID)
		if err != nil {
			return nil, nil, errors.ConfigInvalid(err.Error())
		}
		db, err := initDatabase(ctx, appConfig, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("loading report %s from postgres", reportID)
		return postgres.NewMetricRepository(db, reportID, logger), func() { db.Close() }, nil
	}
	if appConfig.Insight.PayloadFile != "" {
		logger.Info("loading payload file %s", appConfig.Insight.PayloadFile)
		return payload.NewFileSource(appConfig.Insight.PayloadFile, logger), func() {}, nil
	}
	logger.Warn("no metric source configured, waiting for POST /api/insight")
	return nil, func() {}, nil
}

func serviceConfig(appConfig *config.Config) app.ComparisonInsightConfig {
	return app.ComparisonInsightConfig{
		Params: drilldown.Params{
			Mode:        insight.Mode(appConfig.Insight.Mode),
			Sensitivity: insight.Sensitivity(appConfig.Insight.Sensitivity),
			GroupRows:   appConfig.Insight.GroupRows,
			MaxChildren: appConfig.Insight.TopMaxChildren,
		},
		LazyMaxChildren:    appConfig.Insight.LazyMaxChildren,
		CandidateCacheSize: appConfig.Insight.CandidateCacheSize,
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel, internal.LogLevelInfo))
	gin.SetMode(appConfig.Server.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	source, closeSource, err := newMetricSource(ctx, appConfig, logger)
	if err != nil {
		cancel()
		log.Fatalf("Failed to initialize metric source: %v", err)
	}
	defer closeSource()

	service := app.NewComparisonInsightService(serviceConfig(appConfig), logger)
	server := ui.NewServer(service, source, logger)

	if source != nil {
		if err := server.Reload(ctx); err != nil {
			logger.Error("initial load failed, serving without data: %v", err)
		}
	}
	cancel()

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
