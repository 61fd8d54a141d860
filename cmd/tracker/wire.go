// File: cmd/tracker/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"yad2_tracker/internal/app"
	"yad2_tracker/internal/auth"
	"yad2_tracker/internal/config"
	"yad2_tracker/internal/endpoint"
	"yad2_tracker/internal/filter"
	"yad2_tracker/internal/jobs"
	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/middleware"
	"yad2_tracker/internal/notification"
	"yad2_tracker/internal/platform/metrics"
	"yad2_tracker/internal/settings"
	"yad2_tracker/internal/source"
	"yad2_tracker/internal/store"
	"yad2_tracker/internal/tracker"

	"github.com/google/wire"
)

// initializeApplication is the main Wire injector.
func initializeApplication(ctx context.Context, cfg *config.Config) (*Application, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		metrics.New,
		provideGateway,
		provideESClient,
		provideIndexer,

		// Pipeline
		source.NewFetcher,
		provideParser,
		provideFilter,
		notification.NewSMTPTransport,
		provideDeliveries,
		notification.NewNotifier,
		provideTrackerIndexer,
		tracker.New,
		wire.Bind(new(tracker.Store), new(*store.Gateway)),
		wire.Bind(new(tracker.Fetcher), new(*source.Fetcher)),
		wire.Bind(new(tracker.Parser), new(*source.Parser)),
		wire.Bind(new(tracker.Filter), new(*filter.Policy)),
		wire.Bind(new(tracker.Notifier), new(*notification.Notifier)),
		wire.Bind(new(notification.SettingsReader), new(*store.Gateway)),

		// Jobs
		jobs.NewTrackerJob,
		jobs.NewCleanupJob,
		wire.Bind(new(jobs.Runner), new(*tracker.Tracker)),
		wire.Bind(new(jobs.Cleaner), new(*store.Gateway)),

		// Admin API
		provideSettingsService,
		provideEndpointService,
		provideBlocklist,
		wire.Bind(new(auth.Blocklist), new(*auth.InMemoryBlocklist)),
		wire.Bind(new(auth.PasswordStore), new(settings.Service)),
		auth.NewSessionService,
		wire.Bind(new(middleware.SessionValidator), new(*auth.SessionService)),
		provideAuthHandler,
		endpoint.NewHandler,
		settings.NewHandler,
		provideListingService,
		wire.Bind(new(listing.Service), new(*listing.ServiceImplementation)),
		listing.NewHandler,
		notification.NewHandler,
		wire.Bind(new(app.HealthChecker), new(*store.Gateway)),
		app.NewServer,

		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
