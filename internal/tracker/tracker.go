// File: internal/tracker/tracker.go
package tracker

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
	"yad2_tracker/internal/platform/metrics"
	"yad2_tracker/internal/source"

	"go.uber.org/zap"
)

// ErrPersistenceUnavailable marks a run that could not establish durable
// dedup state. The scheduler treats it as fatal.
var ErrPersistenceUnavailable = errors.New("persistence unavailable")

// Stage names, used in logs and metrics.
const (
	StageInit      = "init"
	StageCollect   = "collect"
	StageNormalize = "normalize"
	StageDedup     = "dedup"
	StageNotify    = "notify"
	StageCommit    = "commit"
	StageIndex     = "index"
)

// Store is the slice of the persistence gateway a run needs.
type Store interface {
	Durable() bool
	TestConnection(ctx context.Context) bool
	LoadSeenIDs(ctx context.Context) (dedup.SeenSet, error)
	ListActiveEndpoints(ctx context.Context) ([]endpoint.Endpoint, error)
	RecordSeen(ctx context.Context, listings []listing.Listing) (int, error)
}

type Fetcher interface {
	FetchAll(ctx context.Context, urls []string) []source.FetchResult
}

type Parser interface {
	ParseMarkers(raw []byte, now time.Time) []listing.Listing
}

type Filter interface {
	Apply(batch []listing.Listing) []listing.Listing
}

type Notifier interface {
	Notify(ctx context.Context, listings []listing.Listing) notification.Outcome
}

// Indexer mirrors new listings into a search index. Optional.
type Indexer interface {
	Index(ctx context.Context, listings []listing.Listing) error
}

// RunReport summarises one run.
type RunReport struct {
	StartedAt       time.Time            `json:"started_at"`
	Duration        time.Duration        `json:"duration"`
	Durable         bool                 `json:"durable"`
	SeenBefore      int                  `json:"seen_before"`
	Endpoints       int                  `json:"endpoints"`
	EndpointsFailed int                  `json:"endpoints_failed"`
	Parsed          int                  `json:"parsed"`
	Unique          int                  `json:"unique"`
	Kept            int                  `json:"kept"`
	New             int                  `json:"new"`
	Committed       int                  `json:"committed"`
	Notification    notification.Outcome `json:"notification"`
}

// Tracker runs the fetch, normalize, filter, dedup, notify and commit pipeline.
type Tracker struct {
	store    Store
	fetcher  Fetcher
	parser   Parser
	filter   Filter
	notifier Notifier
	indexer  Indexer
	metrics  *metrics.Metrics
	strict   bool
	now      func() time.Time
	logger   *zap.Logger
}

// New builds a tracker. indexer may be nil.
func New(cfg *config.Config, store Store, fetcher Fetcher, parser Parser, filter Filter,
	notifier Notifier, indexer Indexer, m *metrics.Metrics, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:    store,
		fetcher:  fetcher,
		parser:   parser,
		filter:   filter,
		notifier: notifier,
		indexer:  indexer,
		metrics:  m,
		strict:   cfg.StrictStore(),
		now:      time.Now,
		logger:   logger.Named("tracker"),
	}
}

// Run executes one pass. Stages run strictly in order and nothing is retried
// here; the next scheduled tick is the retry. An error wrapping
// ErrPersistenceUnavailable means dedup state could not be established.
func (t *Tracker) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartedAt: t.now()}
	t.metrics.RunInFlight.Set(1)
	defer t.metrics.RunInFlight.Set(0)

	err := t.run(ctx, report)

	report.Duration = time.Since(report.StartedAt)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}
	t.metrics.ObserveRun(result, report.Duration, t.now())

	if err != nil {
		t.logger.Error("Tracker run failed", zap.Error(err), zap.Duration("duration", report.Duration))
		return report, err
	}
	t.logger.Info("Tracker run completed",
		zap.Int("endpoints", report.Endpoints),
		zap.Int("endpoints_failed", report.EndpointsFailed),
		zap.Int("parsed", report.Parsed),
		zap.Int("kept", report.Kept),
		zap.Int("new", report.New),
		zap.Int("committed", report.Committed),
		zap.String("notification", string(report.Notification)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (t *Tracker) run(ctx context.Context, report *RunReport) error {
	// 1. Init
	start := time.Now()
	seen, err := t.init(ctx, report)
	t.metrics.ObserveStage(StageInit, start)
	if err != nil {
		return err
	}

	// 2. Collect
	start = time.Now()
	results, err := t.collect(ctx, report)
	t.metrics.ObserveStage(StageCollect, start)
	if err != nil {
		return err
	}

	// 3. Normalize + filter
	start = time.Now()
	kept := t.normalize(results, report)
	t.metrics.ObserveStage(StageNormalize, start)

	// 4. Dedup
	start = time.Now()
	fresh, _ := dedup.Partition(kept, seen)
	report.New = len(fresh)
	t.metrics.ListingsTotal.WithLabelValues("new").Add(float64(len(fresh)))
	t.metrics.ObserveStage(StageDedup, start)
	t.logger.Info("Dedup complete", zap.Int("kept", len(kept)), zap.Int("new", len(fresh)))

	// 5. Notify
	report.Notification = notification.OutcomeNothingToSend
	if len(fresh) > 0 {
		start = time.Now()
		report.Notification = t.notifier.Notify(ctx, fresh)
		t.metrics.ObserveStage(StageNotify, start)
	}
	t.metrics.NotificationsTotal.WithLabelValues(string(report.Notification)).Inc()

	// 6. Commit the whole filtered batch so known rows refresh their metadata.
	start = time.Now()
	committed, err := t.store.RecordSeen(ctx, kept)
	report.Committed = committed
	t.metrics.ObserveStage(StageCommit, start)
	if err != nil {
		return fmt.Errorf("%s: recorded %d of %d listings: %w", StageCommit, committed, len(kept), err)
	}

	if t.indexer != nil && len(fresh) > 0 {
		start = time.Now()
		if err := t.indexer.Index(ctx, fresh); err != nil {
			t.logger.Warn("Search index update failed", zap.Int("listings", len(fresh)), zap.Error(err))
		}
		t.metrics.ObserveStage(StageIndex, start)
	}
	return nil
}

func (t *Tracker) init(ctx context.Context, report *RunReport) (dedup.SeenSet, error) {
	report.Durable = t.store.Durable()

	if t.strict && !report.Durable {
		return dedup.NewSeenSet(), fmt.Errorf("%s: strict mode requires the durable store: %w", StageInit, ErrPersistenceUnavailable)
	}
	if !t.store.TestConnection(ctx) {
		if t.strict {
			return dedup.NewSeenSet(), fmt.Errorf("%s: store connection test failed: %w", StageInit, ErrPersistenceUnavailable)
		}
		t.logger.Warn("Store connection test failed in permissive mode, continuing. New-ad detection may report already seen ads.")
	}

	seen, err := t.store.LoadSeenIDs(ctx)
	if err != nil {
		if t.strict {
			return seen, fmt.Errorf("%s: load seen ids: %w: %w", StageInit, ErrPersistenceUnavailable, err)
		}
		t.logger.Warn("Could not load seen set in permissive mode, treating every ad as new", zap.Error(err))
	}
	if !report.Durable {
		t.logger.Warn("Running without the durable store; dedup state is local to this machine")
	}
	report.SeenBefore = seen.Len()
	return seen, nil
}

func (t *Tracker) collect(ctx context.Context, report *RunReport) ([]source.FetchResult, error) {
	endpoints, err := t.store.ListActiveEndpoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: list active endpoints: %w", StageCollect, err)
	}
	report.Endpoints = len(endpoints)
	if len(endpoints) == 0 {
		t.logger.Warn("No active endpoints configured")
		return nil, nil
	}

	urls := make([]string, len(endpoints))
	for i, ep := range endpoints {
		urls[i] = ep.URL
	}

	results := t.fetcher.FetchAll(ctx, urls)
	for _, r := range results {
		if r.Err != nil {
			report.EndpointsFailed++
			t.metrics.EndpointFetchTotal.WithLabelValues(metrics.ResultFailure).Inc()
			t.logger.Warn("Skipping endpoint", zap.String("stage", StageCollect), zap.String("url", r.URL), zap.Error(r.Err))
			continue
		}
		t.metrics.EndpointFetchTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	}
	return results, nil
}

func (t *Tracker) normalize(results []source.FetchResult, report *RunReport) []listing.Listing {
	now := t.now()
	var all []listing.Listing
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		parsed := t.parser.ParseMarkers(r.Body, now)
		if len(parsed) == 0 {
			t.logger.Warn("Endpoint returned no listings", zap.String("url", r.URL))
		}
		t.logger.Debug("Parsed endpoint", zap.String("url", r.URL), zap.Int("listings", len(parsed)))
		all = append(all, parsed...)
	}
	report.Parsed = len(all)

	unique := dedup.Unique(all)
	report.Unique = len(unique)

	kept := t.filter.Apply(unique)
	report.Kept = len(kept)

	t.metrics.ListingsTotal.WithLabelValues("parsed").Add(float64(report.Parsed))
	t.metrics.ListingsTotal.WithLabelValues("kept").Add(float64(report.Kept))
	t.logger.Info("Normalized listings",
		zap.Int("parsed", report.Parsed),
		zap.Int("unique", report.Unique),
		zap.Int("filtered_out", report.Unique-report.Kept),
	)
	return kept
}
