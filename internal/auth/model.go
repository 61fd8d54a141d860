// File: internal/auth/model.go
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminSubject is the only principal the admin panel knows about.
const AdminSubject = "admin"

// LoginRequest defines the structure for login requests.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest defines the structure for password change requests.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// SessionResponse is returned after login and verify.
type SessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Claims are the signed contents of an admin session token. PasswordTag binds
// the token to the admin password in effect when it was issued.
type Claims struct {
	jwt.RegisteredClaims
	PasswordTag string `json:"pwt,omitempty"`
}
