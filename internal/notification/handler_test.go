package notification

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newDeliveriesRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(repo, zap.NewNop()).RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return r
}

func TestHandler_ListDeliveries(t *testing.T) {
	repo := new(MockDeliveryRepository)
	repo.On("List", mock.Anything, 2, 5).
		Return([]Delivery{{Outcome: OutcomeSent, AdCount: 3, RecipientCount: 1}}, common.NewPagination(6, 2, 5), nil)

	w := httptest.NewRecorder()
	newDeliveriesRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?page=2&page_size=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"sent"`)
	assert.Contains(t, w.Body.String(), `"has_prev":true`)
	repo.AssertExpectations(t)
}

func TestHandler_ListDeliveriesStoreError(t *testing.T) {
	repo := new(MockDeliveryRepository)
	repo.On("List", mock.Anything, common.DefaultPage, common.DefaultPageSize).Return(nil, nil, errors.New("db down"))

	w := httptest.NewRecorder()
	newDeliveriesRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}
