// File: cmd/tracker/providers.go
package main

import (
	"context"
	"time"

	"yad2_tracker/internal/app"
	"yad2_tracker/internal/auth"
	"yad2_tracker/internal/config"
	"yad2_tracker/internal/endpoint"
	"yad2_tracker/internal/filter"
	"yad2_tracker/internal/jobs"
	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/notification"
	platformElasticsearch "yad2_tracker/internal/platform/elasticsearch"
	zaplogger "yad2_tracker/internal/platform/logger"
	"yad2_tracker/internal/settings"
	"yad2_tracker/internal/source"
	"yad2_tracker/internal/store"
	"yad2_tracker/internal/tracker"

	"go.uber.org/zap"
)

// Application is everything a command may need, built once per invocation.
type Application struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      *store.Gateway
	Tracker    *tracker.Tracker
	TrackerJob *jobs.TrackerJob
	CleanupJob *jobs.CleanupJob
	Notifier   *notification.Notifier
	Indexer    *platformElasticsearch.Indexer
	Server     *app.Server
}

// provideGateway opens the store, makes sure the schema exists and seeds the
// endpoints table on first start.
func provideGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Gateway, func(), error) {
	gw, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := gw.EnsureSchema(ctx); err != nil {
		gw.Close()
		return nil, nil, err
	}
	if len(cfg.SeedEndpointURLs) > 0 {
		seeded, err := gw.SeedEndpoints(ctx, cfg.SeedEndpointURLs)
		if err != nil {
			logger.Warn("Failed to seed endpoints", zap.Error(err))
		} else if seeded > 0 {
			logger.Info("Seeded endpoints from SEED_ENDPOINT_URLS", zap.Int("count", seeded))
		}
	}
	if err := gw.SeedSettings(ctx, cfg.SendEmails); err != nil {
		logger.Warn("Failed to seed notification settings", zap.Error(err))
	}
	cleanup := func() {
		gw.Close()
	}
	return gw, cleanup, nil
}

func provideParser(cfg *config.Config) *source.Parser {
	return source.NewParser(cfg.SourceItemBaseURL)
}

func provideFilter(cfg *config.Config) *filter.Policy {
	return filter.NewPolicy(cfg.FilterKeywords, cfg.ExcludeAgencies)
}

func provideDeliveries(gw *store.Gateway) notification.Repository {
	return gw.Deliveries()
}

func provideSettingsService(gw *store.Gateway) settings.Service {
	return gw.Settings()
}

func provideEndpointService(gw *store.Gateway) endpoint.Service {
	return gw.Endpoints()
}

// provideESClient treats an unreachable cluster like a missing one: the mirror
// is optional and must not stop tracking.
func provideESClient(cfg *config.Config, logger *zap.Logger) *platformElasticsearch.ESClientWrapper {
	client, err := platformElasticsearch.NewClient(cfg, logger)
	if err != nil {
		logger.Warn("Search mirror unavailable, continuing without it", zap.Error(err))
		return nil
	}
	return client
}

func provideIndexer(ctx context.Context, client *platformElasticsearch.ESClientWrapper, logger *zap.Logger) *platformElasticsearch.Indexer {
	if client == nil {
		return nil
	}
	if err := platformElasticsearch.CreateSeenListingsIndexIfNotExists(ctx, client, logger); err != nil {
		logger.Warn("Failed to create seen listings index, mirror disabled", zap.Error(err))
		return nil
	}
	return platformElasticsearch.NewIndexer(client, logger)
}

// provideTrackerIndexer keeps a nil *Indexer from becoming a non-nil interface.
func provideTrackerIndexer(ix *platformElasticsearch.Indexer) tracker.Indexer {
	if ix == nil {
		return nil
	}
	return ix
}

func provideBlocklist() *auth.InMemoryBlocklist {
	return auth.NewInMemoryBlocklist(10 * time.Minute)
}

func provideAuthHandler(cfg *config.Config, sessions *auth.SessionService, logger *zap.Logger) *auth.Handler {
	return auth.NewHandler(sessions, cfg.IsProduction(), logger)
}

func provideListingService(cfg *config.Config, gw *store.Gateway, logger *zap.Logger) *listing.ServiceImplementation {
	loc, err := time.LoadLocation(cfg.TrackerTimezone)
	if err != nil {
		loc = time.UTC
	}
	return listing.NewService(gw.Listings(), gw.Endpoints(), loc, logger)
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := zaplogger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}
