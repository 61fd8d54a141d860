// File: internal/endpoint/handler.go
package endpoint

import (
	"errors"
	"strconv"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for endpoint handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new endpoint handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("EndpointHandler"),
	}
}

// RegisterRoutes sets up the routes for endpoint management under /urls.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/urls")
	group.Use(authMW)
	{
		group.GET("", h.listEndpoints)
		group.POST("", h.createEndpoint)
		group.PUT("/:id", h.updateEndpoint)
		group.DELETE("/:id", h.deleteEndpoint)
	}
}

func (h *Handler) listEndpoints(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	endpoints, err := h.service.ListEndpoints(c.Request.Context(), activeOnly)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]EndpointResponse, len(endpoints))
	for i := range endpoints {
		responses[i] = ToEndpointResponse(&endpoints[i])
	}
	common.RespondOK(c, "Endpoints retrieved successfully", responses)
}

func (h *Handler) createEndpoint(c *gin.Context) {
	var req CreateEndpointRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.service.AddEndpoint(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Endpoint created successfully", ToEndpointResponse(e))
}

func (h *Handler) updateEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateEndpointRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := h.service.UpdateEndpoint(c.Request.Context(), id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Endpoint updated successfully", ToEndpointResponse(e))
}

func (h *Handler) deleteEndpoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteEndpoint(c.Request.Context(), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid endpoint ID format."))
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return false
	}
	return true
}
