package endpoint

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newEndpointRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(repo, zap.NewNop()), zap.NewNop()).
		RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateEndpoint(t *testing.T) {
	repo := new(MockEndpointRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	r := newEndpointRouter(repo)

	w := serve(r, http.MethodPost, "/api/v1/urls", `{"url":"`+feedURL+`","display_name":"TLV"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"TLV"`)

	w = serve(r, http.MethodPost, "/api/v1/urls", `{"url":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_CreateEndpoint_Conflict(t *testing.T) {
	repo := new(MockEndpointRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(common.ErrConflict.WithDetails("dup"))

	w := serve(newEndpointRouter(repo), http.MethodPost, "/api/v1/urls", `{"url":"`+feedURL+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_ListEndpoints_ActiveOnly(t *testing.T) {
	repo := new(MockEndpointRepository)
	repo.On("FindAll", mock.Anything, true).Return([]Endpoint{{URL: feedURL, IsActive: true}}, nil)

	w := serve(newEndpointRouter(repo), http.MethodGet, "/api/v1/urls?active=true", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "city=5000")
	repo.AssertExpectations(t)
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	repo := new(MockEndpointRepository)
	existing := &Endpoint{URL: feedURL, IsActive: true}
	existing.ID = 7
	repo.On("FindByID", mock.Anything, uint(7)).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)
	repo.On("Delete", mock.Anything, uint(7)).Return(nil)
	repo.On("Delete", mock.Anything, uint(8)).Return(common.ErrNotFound.WithDetails("Endpoint not found."))
	r := newEndpointRouter(repo)

	w := serve(r, http.MethodPut, "/api/v1/urls/7", `{"is_active":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, existing.IsActive)

	w = serve(r, http.MethodPut, "/api/v1/urls/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, "/api/v1/urls/7", "")
	assert.Less(t, w.Code, 300)

	w = serve(r, http.MethodDelete, "/api/v1/urls/8", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
