// File: internal/endpoint/service.go
package endpoint

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"yad2_tracker/internal/common"

	"go.uber.org/zap"
)

// Service defines the business logic for managing polled endpoints.
type Service interface {
	ListEndpoints(ctx context.Context, activeOnly bool) ([]Endpoint, error)
	GetEndpoint(ctx context.Context, id uint) (*Endpoint, error)
	AddEndpoint(ctx context.Context, req CreateEndpointRequest) (*Endpoint, error)
	UpdateEndpoint(ctx context.Context, id uint, req UpdateEndpointRequest) (*Endpoint, error)
	SetActiveByURL(ctx context.Context, rawURL string, active bool) (*Endpoint, error)
	DeleteEndpoint(ctx context.Context, id uint) error
	DeleteByURL(ctx context.Context, rawURL string) error
	SeedIfEmpty(ctx context.Context, urls []string) (int, error)
	CountEndpoints(ctx context.Context) (total, active int64, err error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new endpoint service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.Named("EndpointService"),
	}
}

// NormalizeURL trims the URL and checks it is an absolute http(s) URL.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", common.ErrBadRequest.WithDetails("Endpoint URL must be an absolute http(s) URL.")
	}
	return trimmed, nil
}

func (s *service) ListEndpoints(ctx context.Context, activeOnly bool) ([]Endpoint, error) {
	return s.repo.FindAll(ctx, activeOnly)
}

func (s *service) GetEndpoint(ctx context.Context, id uint) (*Endpoint, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) AddEndpoint(ctx context.Context, req CreateEndpointRequest) (*Endpoint, error) {
	normalized, err := NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	e := &Endpoint{
		URL:         normalized,
		DisplayName: trimmedOrNil(req.DisplayName),
		IsActive:    true,
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Endpoint added", zap.Uint("id", e.ID), zap.String("url", e.URL), zap.Bool("active", e.IsActive))
	return e, nil
}

func (s *service) UpdateEndpoint(ctx context.Context, id uint, req UpdateEndpointRequest) (*Endpoint, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.URL != nil {
		normalized, err := NormalizeURL(*req.URL)
		if err != nil {
			return nil, err
		}
		e.URL = normalized
	}
	if req.DisplayName != nil {
		e.DisplayName = trimmedOrNil(req.DisplayName)
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Endpoint updated", zap.Uint("id", e.ID), zap.Bool("active", e.IsActive))
	return e, nil
}

func (s *service) SetActiveByURL(ctx context.Context, rawURL string, active bool) (*Endpoint, error) {
	e, err := s.repo.FindByURL(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}
	if e.IsActive == active {
		return e, nil
	}
	e.IsActive = active
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Endpoint active flag changed", zap.String("url", e.URL), zap.Bool("active", active))
	return e, nil
}

func (s *service) DeleteEndpoint(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Endpoint removed", zap.Uint("id", id))
	return nil
}

func (s *service) DeleteByURL(ctx context.Context, rawURL string) error {
	e, err := s.repo.FindByURL(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return err
	}
	return s.DeleteEndpoint(ctx, e.ID)
}

// SeedIfEmpty adds urls only when no endpoint exists yet, so operator removals
// are never undone by a restart. Invalid or duplicate seeds are skipped.
func (s *service) SeedIfEmpty(ctx context.Context, urls []string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	total, _, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total > 0 {
		return 0, nil
	}

	added := 0
	for _, raw := range urls {
		if _, err := s.AddEndpoint(ctx, CreateEndpointRequest{URL: raw}); err != nil {
			if errors.Is(err, common.ErrConflict) || errors.Is(err, common.ErrBadRequest) {
				s.logger.Warn("Skipping seed endpoint", zap.String("url", raw), zap.Error(err))
				continue
			}
			return added, err
		}
		added++
	}
	s.logger.Info("Seeded endpoints", zap.Int("count", added))
	return added, nil
}

func (s *service) CountEndpoints(ctx context.Context) (total, active int64, err error) {
	return s.repo.Count(ctx)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
