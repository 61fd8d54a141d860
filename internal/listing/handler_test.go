package listing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockService is a mock type for listing.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SearchHistory(ctx context.Context, query SearchQuery) ([]SeenListing, *common.Pagination, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]SeenListing), args.Get(1).(*common.Pagination), args.Error(2)
}

func (m *MockService) GetSeenListing(ctx context.Context, id string) (*SeenListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SeenListing), args.Error(1)
}

func (m *MockService) GetStats(ctx context.Context) (*Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func newListingRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	passthrough := func(c *gin.Context) { c.Next() }
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"), passthrough)
	return r
}

func TestHandler_SearchAds(t *testing.T) {
	svc := new(MockService)
	svc.On("SearchHistory", mock.Anything, mock.MatchedBy(func(q SearchQuery) bool {
		return q.SearchTerm == "garden" && q.Page == 2 && q.PageSize == 5
	})).Return([]SeenListing{{ID: "a", Title: "Garden flat"}}, common.NewPagination(6, 2, 5), nil)

	w := httptest.NewRecorder()
	newListingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ads?search=garden&page=2&page_size=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data       []SeenListingResponse `json:"data"`
		Pagination common.Pagination     `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Garden flat", body.Data[0].Title)
	assert.EqualValues(t, 6, body.Pagination.TotalItems)
	svc.AssertExpectations(t)
}

func TestHandler_SearchAds_InvalidSellerKind(t *testing.T) {
	svc := new(MockService)
	w := httptest.NewRecorder()
	newListingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ads?seller_kind=broker", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	svc.AssertNotCalled(t, "SearchHistory", mock.Anything, mock.Anything)
}

func TestHandler_GetAd(t *testing.T) {
	svc := new(MockService)
	svc.On("GetSeenListing", mock.Anything, "a").Return(&SeenListing{ID: "a", Title: "Garden flat"}, nil)
	svc.On("GetSeenListing", mock.Anything, "zz").Return(nil, common.ErrNotFound.WithDetails("Listing not found."))
	r := newListingRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ads/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Garden flat")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ads/zz", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_GetStats(t *testing.T) {
	svc := new(MockService)
	svc.On("GetStats", mock.Anything).Return(&Stats{TotalURLs: 2, ActiveURLs: 1, TotalAds: 9, AdsToday: 1, AdsThisWeek: 4}, nil)

	w := httptest.NewRecorder()
	newListingRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ads/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"adsThisWeek":4`)
	assert.Contains(t, w.Body.String(), `"totalUrls":2`)
}
