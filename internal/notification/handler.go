package notification

import (
	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	deliveries Repository
	logger     *zap.Logger
}

func NewHandler(deliveries Repository, logger *zap.Logger) *Handler {
	return &Handler{
		deliveries: deliveries,
		logger:     logger.Named("NotificationHandler"),
	}
}

// RegisterRoutes sets up the delivery log routes.
// All routes in this group should be authenticated.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/notifications")
	group.Use(authMW)
	group.GET("", h.listDeliveries)
}

func (h *Handler) listDeliveries(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)

	deliveries, pagination, err := h.deliveries.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list deliveries", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Deliveries retrieved successfully.", deliveries, pagination)
}
