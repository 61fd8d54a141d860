// File: internal/middleware/auth.go
package middleware

import (
	"context"

	"yad2_tracker/internal/auth"
	"yad2_tracker/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionValidator validates an admin session token.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware creates a Gin middleware that requires a valid admin session,
// taken from the session cookie or a Bearer Authorization header.
func AuthMiddleware(sessions SessionValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := common.GetSessionToken(c)
		if token == "" {
			logger.Debug("Session token missing", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Login required."))
			return
		}

		claims, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Session validation failed", zap.Error(err))
			common.RespondWithError(c, err)
			return
		}

		c.Set(common.SessionIDKey, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(common.SessionExpiryKey, claims.ExpiresAt.Time)
		}
		c.Next()
	}
}
