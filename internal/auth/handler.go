// File: internal/auth/handler.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Sessions is what the handler needs from SessionService.
type Sessions interface {
	Login(ctx context.Context, password string) (string, time.Time, error)
	Logout(ctx context.Context, sessionID string, expiresAt time.Time) error
	ChangePassword(ctx context.Context, current, next string) (string, time.Time, error)
}

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	sessions     Sessions
	secureCookie bool
	logger       *zap.Logger
}

// NewHandler creates a new auth handler. secureCookie marks the session cookie
// HTTPS-only.
func NewHandler(sessions Sessions, secureCookie bool, logger *zap.Logger) *Handler {
	return &Handler{
		sessions:     sessions,
		secureCookie: secureCookie,
		logger:       logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", authMW, h.logout)
		authGroup.GET("/verify", authMW, h.verify)
		authGroup.PUT("/password", authMW, h.changePassword)
	}
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}

	token, expiresAt, err := h.sessions.Login(c.Request.Context(), req.Password)
	if err != nil {
		h.logger.Warn("Login failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		common.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))
	common.RespondOK(c, "Login successful.", SessionResponse{Authenticated: true, ExpiresAt: expiresAt})
}

func (h *Handler) logout(c *gin.Context) {
	err := h.sessions.Logout(c.Request.Context(),
		common.GetSessionIDFromContext(c),
		common.GetSessionExpiryFromContext(c),
	)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.setSessionCookie(c, "", -1)
	common.RespondOK(c, "Logged out.", nil)
}

func (h *Handler) verify(c *gin.Context) {
	common.RespondOK(c, "Session is valid.", SessionResponse{
		Authenticated: true,
		ExpiresAt:     common.GetSessionExpiryFromContext(c),
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req, h.logger) {
		return
	}
	token, expiresAt, err := h.sessions.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))
	common.RespondOK(c, "Password changed.", SessionResponse{Authenticated: true, ExpiresAt: expiresAt})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, value, maxAge, "/", "", h.secureCookie, true)
}

func bindJSON(c *gin.Context, dst interface{}, logger *zap.Logger) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Debug("Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}
