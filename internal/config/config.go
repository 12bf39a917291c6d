package config

import (
	"os"
	"strconv"

	"datalens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Profile  ProfileConfig
	Report   ReportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// StorageConfig holds media storage settings
type StorageConfig struct {
	MediaRoot   string
	MaxUploadMB int64
}

// ProfileConfig holds the data-quality warning thresholds. All comparisons
// against these thresholds use a strictly-greater-than rule, so values landing
// exactly on a threshold do not flag.
type ProfileConfig struct {
	OutlierIQRMult   float64 // IQR fence multiplier for outlier detection
	SkewThreshold    float64 // absolute sample skewness above which a column flags
	CardinalityRatio float64 // distinct/rows ratio above which a column flags
	TopValues        int     // how many frequent values to report per categorical column
	PreviewRows      int     // rows shown in dashboard and report previews
}

// ReportConfig holds PDF export settings
type ReportConfig struct {
	WkhtmltopdfPath string // optional explicit binary path; empty uses PATH lookup
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Storage: StorageConfig{
			MediaRoot:   getEnvOrDefault("MEDIA_ROOT", "media"),
			MaxUploadMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)),
		},
		Profile: ProfileConfig{
			OutlierIQRMult:   getEnvFloatOrDefault("OUTLIER_IQR_MULT", 1.5),
			SkewThreshold:    getEnvFloatOrDefault("SKEW_THRESHOLD", 1.0),
			CardinalityRatio: getEnvFloatOrDefault("CARDINALITY_RATIO", 0.5),
			TopValues:        getEnvIntOrDefault("TOP_VALUES", 5),
			PreviewRows:      getEnvIntOrDefault("PREVIEW_ROWS", 10),
		},
		Report: ReportConfig{
			WkhtmltopdfPath: os.Getenv("WKHTMLTOPDF_PATH"),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if c.Storage.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if c.Profile.OutlierIQRMult <= 0 {
		return errors.ConfigInvalid("OUTLIER_IQR_MULT must be positive")
	}
	if c.Profile.SkewThreshold <= 0 {
		return errors.ConfigInvalid("SKEW_THRESHOLD must be positive")
	}
	if c.Profile.CardinalityRatio <= 0 || c.Profile.CardinalityRatio > 1 {
		return errors.ConfigInvalid("CARDINALITY_RATIO must be in (0, 1]")
	}
	if c.Profile.TopValues < 1 {
		return errors.ConfigInvalid("TOP_VALUES must be at least 1")
	}
	if c.Profile.PreviewRows < 1 {
		return errors.ConfigInvalid("PREVIEW_ROWS must be at least 1")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
