// File: internal/common/pagination.go
package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page window bounds shared by the admin list endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationQuery is the page window an admin list call asks for.
type PaginationQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// ParsePaginationQuery reads page and page_size from the query string.
// Missing, malformed or non-positive values fall back to the defaults.
func ParsePaginationQuery(c *gin.Context) PaginationQuery {
	return PaginationQuery{
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}.Normalize()
}

// GetPaginationParams is ParsePaginationQuery for callers that pass the two ints on.
func GetPaginationParams(c *gin.Context) (page, pageSize int) {
	q := ParsePaginationQuery(c)
	return q.Page, q.PageSize
}

// Normalize applies the defaults and caps the page size at MaxPageSize.
func (q PaginationQuery) Normalize() PaginationQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	switch {
	case q.PageSize <= 0:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	return q
}

// Limit is the normalized page size.
func (q PaginationQuery) Limit() int {
	return q.Normalize().PageSize
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
