package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"yad2_tracker/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockListingRepository is a mock type for listing.Repository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) LoadIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockListingRepository) Upsert(ctx context.Context, seen *SeenListing) error {
	return m.Called(ctx, seen).Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*SeenListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SeenListing), args.Error(1)
}

func (m *MockListingRepository) Search(ctx context.Context, query SearchQuery) ([]SeenListing, *common.Pagination, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]SeenListing), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockListingRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockListingRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]SeenListing, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SeenListing), args.Error(1)
}

// MockEndpointCounter is a mock type for EndpointCounter
type MockEndpointCounter struct {
	mock.Mock
}

func (m *MockEndpointCounter) CountEndpoints(ctx context.Context) (int64, int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func TestGetStats_DayBoundaryInLocation(t *testing.T) {
	loc := time.FixedZone("IST", 3*60*60)
	repo := new(MockListingRepository)
	counter := new(MockEndpointCounter)

	svc := NewService(repo, counter, loc, zap.NewNop())
	// 01:30 local on May 10 is still May 9 in UTC.
	svc.now = func() time.Time { return time.Date(2026, 5, 9, 22, 30, 0, 0, time.UTC) }

	startOfDay := time.Date(2026, 5, 10, 0, 0, 0, 0, loc)
	weekAgo := time.Date(2026, 5, 3, 1, 30, 0, 0, loc)

	counter.On("CountEndpoints", mock.Anything).Return(int64(3), int64(2), nil)
	repo.On("Count", mock.Anything).Return(int64(120), nil)
	repo.On("CountCreatedSince", mock.Anything, mock.MatchedBy(func(t time.Time) bool { return t.Equal(startOfDay) })).Return(int64(4), nil)
	repo.On("CountCreatedSince", mock.Anything, mock.MatchedBy(func(t time.Time) bool { return t.Equal(weekAgo) })).Return(int64(30), nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalURLs: 3, ActiveURLs: 2, TotalAds: 120, AdsToday: 4, AdsThisWeek: 30}, *stats)
	repo.AssertExpectations(t)
	counter.AssertExpectations(t)
}

func TestGetStats_Errors(t *testing.T) {
	t.Run("endpoint count", func(t *testing.T) {
		counter := new(MockEndpointCounter)
		counter.On("CountEndpoints", mock.Anything).Return(int64(0), int64(0), errors.New("boom"))
		_, err := NewService(new(MockListingRepository), counter, nil, zap.NewNop()).GetStats(context.Background())
		assert.Error(t, err)
	})

	t.Run("listing count", func(t *testing.T) {
		repo := new(MockListingRepository)
		repo.On("Count", mock.Anything).Return(int64(0), errors.New("boom"))
		_, err := NewService(repo, nil, nil, zap.NewNop()).GetStats(context.Background())
		assert.Error(t, err)
	})
}

func TestGetSeenListing_NotFound(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, common.ErrNotFound)

	_, err := NewService(repo, nil, nil, zap.NewNop()).GetSeenListing(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSeenListing_ToListingRoundTrip(t *testing.T) {
	l := Listing{
		ID:           "abc",
		Title:        "Flat",
		Price:        PriceNotListed,
		Address:      "Herzl 1",
		SellerKind:   SellerPrivate,
		Link:         "https://www.yad2.co.il/item/abc",
		Tags:         []string{"balcony"},
		ImageURL:     "https://img/1.jpg",
		DiscoveredAt: time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC),
	}
	seen := ToSeen(l, time.Now())
	assert.Equal(t, l, seen.ToListing())
}
