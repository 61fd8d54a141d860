// File: internal/platform/database/gorm.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yad2_tracker/internal/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrNoDatabaseURL is returned when DATABASE_URL is empty.
var ErrNoDatabaseURL = errors.New("database url is not configured")

const initialBackoff = 500 * time.Millisecond

// opener turns a DSN into a live gorm handle. Swapped out in tests.
type opener func(dsn string) (*gorm.DB, error)

// NewGORM creates a new GORM database instance backed by PostgreSQL.
//
// The configured DSN form is tried first. When a classified transient network
// failure comes back, the alternate form of the same DSN (URL vs keyword/value)
// is tried before backing off, for up to DB_CONNECT_ATTEMPTS rounds.
func NewGORM(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrNoDatabaseURL
	}

	gormCfg := newGormConfig(cfg, log)

	open := func(dsn string) (*gorm.DB, error) {
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		if err := configurePool(db, cfg); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DBConnectTimeout)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	}

	forms := []string{cfg.DatabaseURL}
	if alt, err := AlternateDSN(cfg.DatabaseURL); err == nil && alt != cfg.DatabaseURL {
		forms = append(forms, alt)
	} else if err != nil {
		log.Warn("Could not derive alternate DSN form", zap.Error(err))
	}

	db, err := connect(ctx, forms, cfg.DBConnectAttempts, open, log)
	if err != nil {
		return nil, err
	}
	log.Info("Successfully connected to the database.")
	return db, nil
}

// newGormConfig disables gorm's own ping on Open. That ping ignores
// DB_CONNECT_TIMEOUT and leaks the pool when it fails, so the bounded
// PingContext in NewGORM is the only one.
func newGormConfig(cfg *config.Config, log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger:               newGormLogger(cfg, log),
		PrepareStmt:          true, // Caches compiled statements for performance
		DisableAutomaticPing: true,
	}
}

// connect walks the DSN forms once per attempt. Non-transient errors end the
// loop immediately since retrying a bad password only burns time.
func connect(ctx context.Context, forms []string, attempts int, open opener, log *zap.Logger) (*gorm.DB, error) {
	if attempts <= 0 {
		attempts = 1
	}
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		for i, dsn := range forms {
			db, err := open(dsn)
			if err == nil {
				if i > 0 {
					log.Warn("Connected using alternate DSN form", zap.Int("attempt", attempt))
				}
				return db, nil
			}
			lastErr = err
			if !IsTransient(err) {
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}
			log.Warn("Transient database connection failure",
				zap.Int("attempt", attempt),
				zap.Int("dsnForm", i),
				zap.Error(err),
			)
		}

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("database connect cancelled: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

// NewSQLite opens the file-backed store used when the durable database is
// unavailable and STORE_MODE is permissive. Pass ":memory:" in tests.
func NewSQLite(path string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// TestConnection runs a SELECT 1 round-trip. It never returns an error.
func TestConnection(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}
	return db.WithContext(ctx).Exec("SELECT 1").Error == nil
}

// CloseGORMDB closes the GORM database connection.
func CloseGORMDB(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Error getting underlying SQL DB for closing", zap.Error(err))
		return
	}
	log.Info("Closing database connection...")
	if err := sqlDB.Close(); err != nil {
		log.Error("Error closing database connection", zap.Error(err))
		return
	}
	log.Info("Database connection closed.")
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	return nil
}

func newGormLogger(cfg *config.Config, log *zap.Logger) gormlogger.Interface {
	var level gormlogger.LogLevel
	switch cfg.LogLevel {
	case "silent", "fatal", "panic":
		level = gormlogger.Silent
	case "error":
		level = gormlogger.Error
	case "debug": // GORM logs every statement at Info
		level = gormlogger.Info
	default:
		level = gormlogger.Warn
	}

	return gormlogger.New(
		zap.NewStdLog(log.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
