package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the dashboard
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Market    MarketConfig
	Scoring   ScoringConfig
	Jobs      JobsConfig
	Ingest    IngestConfig
	Dashboard DashboardConfig
	Taxonomy  *Taxonomy
}

// DatabaseConfig lists the sqlite files unioned on read. The first one is
// the write target.
type DatabaseConfig struct {
	Paths []string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	GinMode         string
	StaticDir       string
	ShutdownTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// MarketConfig configures the daily price source
type MarketConfig struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
}

// ScoringConfig selects the sentiment scorer. An empty Endpoint selects
// the built-in lexicon scorer.
type ScoringConfig struct {
	Endpoint  string
	APIKey    string
	Model     string
	Timeout   time.Duration
	BatchSize int
}

// JobsConfig holds cron schedules (with seconds). Empty disables a job.
type JobsConfig struct {
	ScoreSchedule string
	PruneSchedule string
	RetentionDays int
}

// IngestConfig holds CSV import configuration
type IngestConfig struct {
	Glob    string
	Workers int
}

// DashboardConfig tunes the aggregation of the dashboard
type DashboardConfig struct {
	CountUnscored bool
	PopupSize     int
}

// WritePath returns the database file that receives inserts and updates.
func (c *DatabaseConfig) WritePath() string {
	if len(c.Paths) == 0 {
		return ""
	}
	return c.Paths[0]
}

// Load loads configuration from environment variables and the taxonomy file
func Load() (*Config, error) {
	_ = godotenv.Load()

	taxonomy, err := LoadTaxonomy(getEnv("TAXONOMY_PATH", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Paths: splitList(getEnv("DATABASE_PATHS", "data/news.db,data/news_scraped.db")),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8090"),
			GinMode:         getEnv("GIN_MODE", "release"),
			StaticDir:       getEnv("STATIC_DIR", "static"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Market: MarketConfig{
			BaseURL:       getEnv("MARKET_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:       getEnvDuration("MARKET_TIMEOUT", 15*time.Second),
			RatePerSecond: getEnvFloat("MARKET_RATE_PER_SECOND", 5),
		},
		Scoring: ScoringConfig{
			Endpoint:  getEnv("SCORER_URL", ""),
			APIKey:    getEnv("SCORER_API_KEY", ""),
			Model:     getEnv("SCORER_MODEL", "deepseek-chat"),
			Timeout:   getEnvDuration("SCORER_TIMEOUT", 30*time.Second),
			BatchSize: getEnvInt("SCORER_BATCH_SIZE", 500),
		},
		Jobs: JobsConfig{
			ScoreSchedule: getEnv("SCORE_SCHEDULE", "0 */30 * * * *"),
			PruneSchedule: getEnv("PRUNE_SCHEDULE", "0 0 3 * * *"),
			RetentionDays: getEnvInt("RETENTION_DAYS", 30),
		},
		Ingest: IngestConfig{
			Glob:    getEnv("INGEST_GLOB", "data/raw_*.csv"),
			Workers: getEnvInt("INGEST_WORKERS", 8),
		},
		Dashboard: DashboardConfig{
			CountUnscored: getEnvBool("COUNT_UNSCORED", false),
			PopupSize:     getEnvInt("POPUP_SIZE", 10),
		},
		Taxonomy: taxonomy,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Database.Paths) == 0 {
		return fmt.Errorf("DATABASE_PATHS is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Market.RatePerSecond <= 0 {
		return fmt.Errorf("MARKET_RATE_PER_SECOND must be positive")
	}

	if c.Jobs.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive")
	}

	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("INGEST_WORKERS must be positive")
	}

	if c.Taxonomy == nil {
		return fmt.Errorf("taxonomy is required")
	}

	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration gets environment variable as duration with default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
