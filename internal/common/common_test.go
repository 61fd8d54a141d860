package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_WithDetailsKeepsSentinel(t *testing.T) {
	err := ErrNotFound.WithDetails("Endpoint not found.")

	assert.Nil(t, ErrNotFound.Details)
	assert.Equal(t, "Endpoint not found.", err.Details)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("lookup: %w", err)
	apiErr, ok := IsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, ok = IsAPIError(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
	assert.Equal(t, 10, p.Offset())

	p = NewPagination(0, 0, 0)
	assert.Equal(t, DefaultPage, p.CurrentPage)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Zero(t, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.Zero(t, p.Offset())
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", DefaultPage, DefaultPageSize},
		{"page=3&page_size=20", 3, 20},
		{"page=-1&page_size=abc", DefaultPage, DefaultPageSize},
		{"page_size=1000", DefaultPage, MaxPageSize},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/ads?"+tt.query, nil)

		page, size := GetPaginationParams(c)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantPageSize, size, tt.query)
	}
}

func TestPaginationQuery_Normalize(t *testing.T) {
	tests := []struct {
		in   PaginationQuery
		want PaginationQuery
	}{
		{PaginationQuery{}, PaginationQuery{Page: DefaultPage, PageSize: DefaultPageSize}},
		{PaginationQuery{Page: 4, PageSize: 25}, PaginationQuery{Page: 4, PageSize: 25}},
		{PaginationQuery{Page: -2, PageSize: MaxPageSize + 1}, PaginationQuery{Page: DefaultPage, PageSize: MaxPageSize}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
		assert.Equal(t, tt.want.PageSize, tt.in.Limit())
	}
}

func TestGetSessionToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"none", "", "", ""},
		{"cookie", "tok-cookie", "", "tok-cookie"},
		{"bearer", "", "Bearer tok-header", "tok-header"},
		{"bearer lowercase", "", "bearer tok-header", "tok-header"},
		{"cookie wins", "tok-cookie", "Bearer tok-header", "tok-cookie"},
		{"basic ignored", "", "Basic abc", ""},
		{"malformed", "", "Bearer", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				c.Request.Header.Set(AuthorizationHeader, tt.header)
			}
			assert.Equal(t, tt.want, GetSessionToken(c))
		})
	}
}

func TestRespondWithError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithError(c, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
}
