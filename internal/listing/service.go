// File: internal/listing/service.go
package listing

import (
	"context"
	"fmt"
	"time"

	"yad2_tracker/internal/common"

	"go.uber.org/zap"
)

// EndpointCounter reports how many endpoints exist and how many are polled.
type EndpointCounter interface {
	CountEndpoints(ctx context.Context) (total, active int64, err error)
}

// Service defines the read side of the seen listings history used by the admin API.
type Service interface {
	SearchHistory(ctx context.Context, query SearchQuery) ([]SeenListing, *common.Pagination, error)
	GetSeenListing(ctx context.Context, id string) (*SeenListing, error)
	GetStats(ctx context.Context) (*Stats, error)
}

// ServiceImplementation implements the listing Service interface.
type ServiceImplementation struct {
	repo      Repository
	endpoints EndpointCounter
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new listing service. Day boundaries for the stats are
// computed in loc.
func NewService(repo Repository, endpoints EndpointCounter, loc *time.Location, logger *zap.Logger) *ServiceImplementation {
	if loc == nil {
		loc = time.UTC
	}
	return &ServiceImplementation{
		repo:      repo,
		endpoints: endpoints,
		loc:       loc,
		now:       time.Now,
		logger:    logger.Named("ListingService"),
	}
}

func (s *ServiceImplementation) SearchHistory(ctx context.Context, query SearchQuery) ([]SeenListing, *common.Pagination, error) {
	return s.repo.Search(ctx, query)
}

func (s *ServiceImplementation) GetSeenListing(ctx context.Context, id string) (*SeenListing, error) {
	return s.repo.FindByID(ctx, id)
}

// GetStats gathers the dashboard counters. "Today" starts at local midnight,
// "this week" is the trailing seven days.
func (s *ServiceImplementation) GetStats(ctx context.Context) (*Stats, error) {
	now := s.now().In(s.loc)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	weekAgo := now.AddDate(0, 0, -7)

	var stats Stats
	var err error

	if s.endpoints != nil {
		if stats.TotalURLs, stats.ActiveURLs, err = s.endpoints.CountEndpoints(ctx); err != nil {
			return nil, fmt.Errorf("count endpoints: %w", err)
		}
	}
	if stats.TotalAds, err = s.repo.Count(ctx); err != nil {
		return nil, fmt.Errorf("count seen listings: %w", err)
	}
	if stats.AdsToday, err = s.repo.CountCreatedSince(ctx, startOfDay); err != nil {
		return nil, fmt.Errorf("count listings today: %w", err)
	}
	if stats.AdsThisWeek, err = s.repo.CountCreatedSince(ctx, weekAgo); err != nil {
		return nil, fmt.Errorf("count listings this week: %w", err)
	}

	s.logger.Debug("Computed stats", zap.Any("stats", stats))
	return &stats, nil
}
