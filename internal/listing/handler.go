// File: internal/listing/handler.go
package listing

import (
	"errors"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for seen listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new listing handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("ListingHandler"),
	}
}

// RegisterRoutes sets up the history routes. All of them require an admin session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	ads := router.Group("/ads")
	ads.Use(authMW)
	{
		ads.GET("", h.searchAds)
		ads.GET("/stats", h.getStats)
		ads.GET("/:id", h.getAd)
	}
}

func (h *Handler) searchAds(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}
	query.PaginationQuery = common.ParsePaginationQuery(c)

	rows, pagination, err := h.service.SearchHistory(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("Failed to search ads", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}

	responses := make([]SeenListingResponse, len(rows))
	for i := range rows {
		responses[i] = ToSeenListingResponse(&rows[i])
	}
	common.RespondPaginated(c, "Ads retrieved successfully", responses, pagination)
}

func (h *Handler) getAd(c *gin.Context) {
	seen, err := h.service.GetSeenListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Ad retrieved successfully", ToSeenListingResponse(seen))
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Stats retrieved successfully", stats)
}
