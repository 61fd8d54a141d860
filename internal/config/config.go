// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store modes.
const (
	StoreModeStrict     = "strict"
	StoreModePermissive = "permissive"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string `mapstructure:"APP_ENV"`

	// Server Configuration (admin API)
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Database Configuration
	DatabaseURL       string        `mapstructure:"DATABASE_URL"`
	StoreMode         string        `mapstructure:"STORE_MODE"`
	FallbackStorePath string        `mapstructure:"FALLBACK_STORE_PATH"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBConnectTimeout  time.Duration `mapstructure:"DB_CONNECT_TIMEOUT_SECONDS"`
	DBConnectAttempts int           `mapstructure:"DB_CONNECT_ATTEMPTS"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Source API
	FetchTimeout      time.Duration `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	FetchConcurrency  int           `mapstructure:"FETCH_CONCURRENCY"`
	FetchDelay        time.Duration `mapstructure:"FETCH_DELAY_MS"`
	SourceItemBaseURL string        `mapstructure:"SOURCE_ITEM_BASE_URL"`
	SeedEndpointURLs  []string      `mapstructure:"SEED_ENDPOINT_URLS"`

	// Filtering
	FilterKeywords  []string `mapstructure:"FILTER_KEYWORDS"`
	ExcludeAgencies bool     `mapstructure:"EXCLUDE_AGENCIES"`

	// Cron Jobs
	TrackerSchedule      string        `mapstructure:"TRACKER_SCHEDULE"`
	TrackerTimezone      string        `mapstructure:"TRACKER_TIMEZONE"`
	RunTimeout           time.Duration `mapstructure:"RUN_TIMEOUT_MINUTES"`
	CleanupJobSchedule   string        `mapstructure:"CLEANUP_JOB_SCHEDULE"`
	CleanupRetentionDays int           `mapstructure:"CLEANUP_RETENTION_DAYS"`

	// Email Configuration
	SendEmails      bool   `mapstructure:"SEND_EMAILS"`
	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT"`
	SMTPUsername    string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword    string `mapstructure:"SMTP_PASSWORD"`
	EmailFrom       string `mapstructure:"EMAIL_FROM"`
	EmailRecipients string `mapstructure:"EMAIL_RECIPIENTS"`

	// Admin Auth
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL_HOURS"`

	// Elasticsearch Configuration (optional search mirror)
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`
}

// DefaultFilterKeywords are brokerage, project and office markers that show up in titles and addresses.
var DefaultFilterKeywords = []string{
	"תיווך", "פרויקט", "משרד", "סוכנות", "נדלן", "משרד תיווך", "סוכנות נדלן",
	"brokerage", "project", "office", "real estate", "agency",
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.DBConnectTimeout = time.Duration(v.GetInt("DB_CONNECT_TIMEOUT_SECONDS")) * time.Second
	cfg.FetchTimeout = time.Duration(v.GetInt("FETCH_TIMEOUT_SECONDS")) * time.Second
	cfg.FetchDelay = time.Duration(v.GetInt("FETCH_DELAY_MS")) * time.Millisecond
	cfg.RunTimeout = time.Duration(v.GetInt("RUN_TIMEOUT_MINUTES")) * time.Minute
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour

	// Comma separated lists arrive from the environment as a single string.
	cfg.SeedEndpointURLs = splitList(v.GetString("SEED_ENDPOINT_URLS"))
	if raw := v.GetString("FILTER_KEYWORDS"); raw != "" {
		cfg.FilterKeywords = splitList(raw)
	} else {
		cfg.FilterKeywords = append([]string(nil), DefaultFilterKeywords...)
	}

	if cfg.StoreMode == "" {
		// Production automation must never silently run without durable dedup.
		if cfg.IsProduction() {
			cfg.StoreMode = StoreModeStrict
		} else {
			cfg.StoreMode = StoreModePermissive
		}
	}
	cfg.StoreMode = strings.ToLower(strings.TrimSpace(cfg.StoreMode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("STORE_MODE", "")
	v.SetDefault("FALLBACK_STORE_PATH", "seen_ads.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	v.SetDefault("DB_CONNECT_TIMEOUT_SECONDS", 30)
	v.SetDefault("DB_CONNECT_ATTEMPTS", 3)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("FETCH_TIMEOUT_SECONDS", 10)
	v.SetDefault("FETCH_CONCURRENCY", 2)
	v.SetDefault("FETCH_DELAY_MS", 750)
	v.SetDefault("SOURCE_ITEM_BASE_URL", "https://www.yad2.co.il/item/")
	v.SetDefault("SEED_ENDPOINT_URLS", "")

	v.SetDefault("FILTER_KEYWORDS", "")
	v.SetDefault("EXCLUDE_AGENCIES", true)

	v.SetDefault("TRACKER_SCHEDULE", "*/15 * * * *")
	v.SetDefault("TRACKER_TIMEZONE", "Asia/Jerusalem")
	v.SetDefault("RUN_TIMEOUT_MINUTES", 10)
	v.SetDefault("CLEANUP_JOB_SCHEDULE", "")
	v.SetDefault("CLEANUP_RETENTION_DAYS", 30)

	// Only the initial value of the send_emails setting; the admin toggle wins afterwards.
	v.SetDefault("SEND_EMAILS", true)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("EMAIL_RECIPIENTS", "")

	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL_HOURS", 24*7)

	v.SetDefault("ELASTICSEARCH_URL", "")
}

// Validate checks the settings that would otherwise fail late, mid-run.
func (c *Config) Validate() error {
	switch c.StoreMode {
	case StoreModeStrict, StoreModePermissive:
	default:
		return fmt.Errorf("STORE_MODE must be %q or %q, got %q", StoreModeStrict, StoreModePermissive, c.StoreMode)
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxOpenConns > 10 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be between 1 and 10, got %d", c.DBMaxOpenConns)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if _, err := time.LoadLocation(c.TrackerTimezone); err != nil {
		return fmt.Errorf("TRACKER_TIMEZONE %q is not a valid location: %w", c.TrackerTimezone, err)
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// StrictStore reports whether a working durable store is required.
func (c *Config) StrictStore() bool {
	return c.StoreMode == StoreModeStrict
}

// EmailConfigured reports whether enough SMTP settings exist to build a transport.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
