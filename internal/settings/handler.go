// File: internal/settings/handler.go
package settings

import (
	"errors"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves the notification settings.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new settings handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("SettingsHandler")}
}

// RegisterRoutes sets up GET/PUT /settings behind the admin session.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/settings")
	group.Use(authMW)
	{
		group.GET("", h.getSettings)
		group.PUT("", h.updateSettings)
	}
}

func (h *Handler) getSettings(c *gin.Context) {
	ns, err := h.service.NotificationSettings(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Settings retrieved successfully", ns)
}

func (h *Handler) updateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return
	}
	ns, err := h.service.UpdateNotificationSettings(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to update settings", zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Settings updated successfully", ns)
}
