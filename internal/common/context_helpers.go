// File: internal/common/context_helpers.go
package common

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GetSessionToken returns the admin session token from the cookie, falling
// back to a Bearer Authorization header. Returns "" when neither is present.
func GetSessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetSessionIDFromContext retrieves the session token ID set by the auth middleware.
func GetSessionIDFromContext(c *gin.Context) string {
	val, exists := c.Get(SessionIDKey)
	if !exists {
		return ""
	}
	id, ok := val.(string)
	if !ok {
		return ""
	}
	return id
}

// GetSessionExpiryFromContext retrieves the session expiry set by the auth middleware.
func GetSessionExpiryFromContext(c *gin.Context) time.Time {
	val, exists := c.Get(SessionExpiryKey)
	if !exists {
		return time.Time{}
	}
	exp, ok := val.(time.Time)
	if !ok {
		return time.Time{}
	}
	return exp
}
