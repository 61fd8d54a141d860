// File: internal/store/gateway.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yad2_tracker/internal/config"
	"yad2_tracker/internal/dedup"
	"yad2_tracker/internal/endpoint"
	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/notification"
	"yad2_tracker/internal/platform/database"
	"yad2_tracker/internal/settings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrDurableStoreUnavailable is returned by Open in strict mode when the
// PostgreSQL store cannot be reached.
var ErrDurableStoreUnavailable = errors.New("durable store unavailable")

// Gateway is the single entry point to persisted state: the seen set, the
// polled endpoints, the notification settings and the delivery log. It owns
// its connection pool.
type Gateway struct {
	db         *gorm.DB
	durable    bool
	listings   listing.Repository
	endpoints  endpoint.Service
	settings   settings.Service
	deliveries notification.Repository
	now        func() time.Time
	logger     *zap.Logger
}

// Open connects according to STORE_MODE. Strict mode requires PostgreSQL.
// Permissive mode falls back to the SQLite file at FALLBACK_STORE_PATH, which
// means dedup state lives only as long as that file does.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Gateway, error) {
	log := logger.Named("store")

	db, err := database.NewGORM(ctx, cfg, log)
	if err == nil {
		return New(db, true, logger), nil
	}

	if cfg.StrictStore() {
		log.Error("Durable store unavailable in strict mode", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrDurableStoreUnavailable, err)
	}

	log.Warn("Durable store unavailable, falling back to local SQLite store. "+
		"Dedup state will not survive loss of this file; duplicate notifications are possible.",
		zap.String("path", cfg.FallbackStorePath),
		zap.Error(err),
	)
	fallback, ferr := database.NewSQLite(cfg.FallbackStorePath, log)
	if ferr != nil {
		return nil, fmt.Errorf("fallback store: %w", ferr)
	}
	return New(fallback, false, logger), nil
}

// New wraps an already open database. durable marks whether it is the
// PostgreSQL store.
func New(db *gorm.DB, durable bool, logger *zap.Logger) *Gateway {
	log := logger.Named("store")
	return &Gateway{
		db:         db,
		durable:    durable,
		listings:   listing.NewGORMRepository(db),
		endpoints:  endpoint.NewService(endpoint.NewGORMRepository(db), logger),
		settings:   settings.NewService(settings.NewGORMRepository(db), logger),
		deliveries: notification.NewGORMRepository(db),
		now:        time.Now,
		logger:     log,
	}
}

// Durable reports whether the gateway is backed by the durable store.
func (g *Gateway) Durable() bool { return g.durable }

// DB exposes the pool to components that share it (admin API health checks).
func (g *Gateway) DB() *gorm.DB { return g.db }

func (g *Gateway) Listings() listing.Repository        { return g.listings }
func (g *Gateway) Endpoints() endpoint.Service         { return g.endpoints }
func (g *Gateway) Settings() settings.Service          { return g.settings }
func (g *Gateway) Deliveries() notification.Repository { return g.deliveries }

// Close releases the pool. Safe to call more than once.
func (g *Gateway) Close() {
	if g == nil || g.db == nil {
		return
	}
	database.CloseGORMDB(g.db, g.logger)
	g.db = nil
}

// TestConnection reports whether a SELECT 1 round-trip succeeds.
func (g *Gateway) TestConnection(ctx context.Context) bool {
	ok := database.TestConnection(ctx, g.db)
	if !ok {
		g.logger.Warn("Store connection test failed", zap.Bool("durable", g.durable))
	}
	return ok
}

// EnsureSchema creates the tables and the created_at indexes when missing.
func (g *Gateway) EnsureSchema(ctx context.Context) error {
	err := g.db.WithContext(ctx).AutoMigrate(
		&listing.SeenListing{},
		&endpoint.Endpoint{},
		&settings.Setting{},
		&notification.Delivery{},
	)
	if err != nil {
		g.logFailure("ensure schema", err)
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadSeenIDs returns the full seen set. On failure it returns an empty set
// together with the error; the caller decides whether that is fatal.
func (g *Gateway) LoadSeenIDs(ctx context.Context) (dedup.SeenSet, error) {
	ids, err := g.listings.LoadIDs(ctx)
	if err != nil {
		g.logFailure("load seen ids", err)
		return dedup.NewSeenSet(), err
	}
	g.logger.Debug("Loaded seen set", zap.Int("count", len(ids)))
	return dedup.NewSeenSet(ids...), nil
}

// RecordSeen upserts every listing. A failed row does not stop the others; the
// returned error joins every row failure.
func (g *Gateway) RecordSeen(ctx context.Context, listings []listing.Listing) (int, error) {
	now := g.now().UTC()
	written := 0
	var errs []error
	for _, l := range listings {
		row := listing.ToSeen(l, now)
		if err := g.listings.Upsert(ctx, &row); err != nil {
			errs = append(errs, err)
			continue
		}
		written++
	}
	if len(errs) > 0 {
		joined := errors.Join(errs...)
		g.logFailure("record seen", joined)
		return written, joined
	}
	return written, nil
}

// --- Endpoints ---

func (g *Gateway) ListActiveEndpoints(ctx context.Context) ([]endpoint.Endpoint, error) {
	eps, err := g.endpoints.ListEndpoints(ctx, true)
	if err != nil {
		g.logFailure("list active endpoints", err)
	}
	return eps, err
}

func (g *Gateway) ListEndpoints(ctx context.Context) ([]endpoint.Endpoint, error) {
	return g.endpoints.ListEndpoints(ctx, false)
}

func (g *Gateway) AddEndpoint(ctx context.Context, url string, displayName *string) (*endpoint.Endpoint, error) {
	return g.endpoints.AddEndpoint(ctx, endpoint.CreateEndpointRequest{URL: url, DisplayName: displayName})
}

func (g *Gateway) UpdateEndpoint(ctx context.Context, id uint, req endpoint.UpdateEndpointRequest) (*endpoint.Endpoint, error) {
	return g.endpoints.UpdateEndpoint(ctx, id, req)
}

func (g *Gateway) SetEndpointActive(ctx context.Context, url string, active bool) (*endpoint.Endpoint, error) {
	return g.endpoints.SetActiveByURL(ctx, url, active)
}

func (g *Gateway) DeleteEndpoint(ctx context.Context, url string) error {
	return g.endpoints.DeleteByURL(ctx, url)
}

// SeedEndpoints adds urls when the endpoints table is empty.
func (g *Gateway) SeedEndpoints(ctx context.Context, urls []string) (int, error) {
	return g.endpoints.SeedIfEmpty(ctx, urls)
}

// SeedSettings writes the initial notification settings when none are stored.
func (g *Gateway) SeedSettings(ctx context.Context, sendEmails bool) error {
	return g.settings.SeedDefaults(ctx, sendEmails)
}

// --- History ---

// CleanupOlderThan deletes seen records first seen more than days ago.
func (g *Gateway) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("cleanup retention must be positive, got %d days", days)
	}
	cutoff := g.now().UTC().AddDate(0, 0, -days)
	n, err := g.listings.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		g.logFailure("cleanup", err)
		return 0, err
	}
	g.logger.Info("Cleaned up old seen listings", zap.Int64("deleted", n), zap.Int("days", days))
	return n, nil
}

// --- Settings ---

func (g *Gateway) NotificationSettings(ctx context.Context) (*settings.NotificationSettings, error) {
	ns, err := g.settings.NotificationSettings(ctx)
	if err != nil {
		g.logFailure("read notification settings", err)
	}
	return ns, err
}

// logFailure keeps routine network blips out of the error level.
func (g *Gateway) logFailure(op string, err error) {
	if database.IsTransient(err) {
		g.logger.Warn("Transient store failure", zap.String("op", op), zap.Error(err))
		return
	}
	g.logger.Error("Store failure", zap.String("op", op), zap.Error(err))
}
