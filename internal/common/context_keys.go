// File: internal/common/context_keys.go
package common

const (
	// SessionCookieName is the HttpOnly cookie carrying the signed admin session.
	SessionCookieName = "admin_session"
	// AuthorizationHeader is accepted as an alternative to the cookie for CLI clients.
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// SessionIDKey is the context key for the authenticated session's token ID
	SessionIDKey = "sessionID"
	// SessionExpiryKey is the context key for the session expiry time
	SessionExpiryKey = "sessionExpiry"
	// LoggerKey is the context key for the request scoped logger
	LoggerKey = "logger"
	// RequestIDKey is the context key for the request ID
	RequestIDKey = "requestID"
)
