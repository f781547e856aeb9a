package config

import (
	"os"
	"strconv"

	"sliceinsight/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Insight  InsightConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// DatabaseConfig holds database connection settings. An empty URL disables
// the postgres metric source.
type DatabaseConfig struct {
	URL      string
	ReportID string `validate:"required_with=URL"`
}

// InsightConfig holds the drill-down defaults. TopMaxChildren caps children
// per row in the top-segment view; slices that would land under a full row are
// shown as top-level rows.
type InsightConfig struct {
	PayloadFile        string
	Mode               string `validate:"oneof=impact outlier"`
	Sensitivity        string `validate:"oneof=low medium high"`
	GroupRows          bool
	TopMaxChildren     int `validate:"gte=0"`
	LazyMaxChildren    int `validate:"gt=0"`
	CandidateCacheSize int `validate:"gt=0"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: *loadDatabaseConfig(),
		Insight:  *loadInsightConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks every section's constraints
func Validate(config *Config) error {
	if err := validate.Struct(config); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:      getEnvOrDefault("DATABASE_URL", ""),
		ReportID: getEnvOrDefault("INSIGHT_REPORT_ID", ""),
	}
}

func loadInsightConfig() *InsightConfig {
	return &InsightConfig{
		PayloadFile:        getEnvOrDefault("INSIGHT_PAYLOAD_FILE", ""),
		Mode:               getEnvOrDefault("INSIGHT_MODE", "outlier"),
		Sensitivity:        getEnvOrDefault("INSIGHT_SENSITIVITY", "medium"),
		GroupRows:          getEnvBoolOrDefault("INSIGHT_GROUP_ROWS", true),
		TopMaxChildren:     getEnvIntOrDefault("INSIGHT_TOP_MAX_CHILDREN", 0),
		LazyMaxChildren:    getEnvIntOrDefault("INSIGHT_LAZY_MAX_CHILDREN", 10),
		CandidateCacheSize: getEnvIntOrDefault("INSIGHT_CANDIDATE_CACHE_SIZE", 64),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
