// File: internal/auth/service.go
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"yad2_tracker/internal/common"
	"yad2_tracker/internal/config"
	"yad2_tracker/internal/platform/crypto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer            = "yad2_tracker"
	defaultSessionTTL = 7 * 24 * time.Hour
)

// PasswordStore persists the admin password hash set from the panel.
type PasswordStore interface {
	AdminPasswordHash(ctx context.Context) (string, error)
	SetAdminPasswordHash(ctx context.Context, hash string) error
}

// SessionService issues and validates admin session tokens.
type SessionService struct {
	secret    []byte
	ttl       time.Duration
	envHash   []byte
	passwords PasswordStore
	blocklist Blocklist
	now       func() time.Time
	logger    *zap.Logger
}

// NewSessionService builds the service. Without SESSION_SECRET a random key is
// generated, so sessions do not survive a restart.
func NewSessionService(cfg *config.Config, passwords PasswordStore, blocklist Blocklist, logger *zap.Logger) (*SessionService, error) {
	log := logger.Named("auth")

	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := crypto.GenerateSecureRandomString(32)
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secret = generated
		log.Warn("SESSION_SECRET not set, using a random key; admin sessions end on restart")
	}

	var envHash []byte
	if cfg.AdminPassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash ADMIN_PASSWORD: %w", err)
		}
		envHash = h
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &SessionService{
		secret:    []byte(secret),
		ttl:       ttl,
		envHash:   envHash,
		passwords: passwords,
		blocklist: blocklist,
		now:       time.Now,
		logger:    log,
	}, nil
}

// Login checks password and issues a signed session token.
func (s *SessionService) Login(ctx context.Context, password string) (string, time.Time, error) {
	stored, err := s.checkPassword(ctx, password)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.issue(s.passwordTag(stored))
}

// Validate parses token and rejects expired, forged or logged-out sessions.
func (s *SessionService) Validate(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(AdminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("Session token rejected", zap.Error(err))
		return nil, common.ErrUnauthorized.WithDetails("Invalid or expired session.")
	}

	revoked, err := s.blocklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session blocklist: %w", err)
	}
	if revoked {
		return nil, common.ErrUnauthorized.WithDetails("Session has been logged out.")
	}

	stored, err := s.passwords.AdminPasswordHash(ctx)
	if err != nil {
		return nil, fmt.Errorf("read admin password hash: %w", err)
	}
	if !hmac.Equal([]byte(claims.PasswordTag), []byte(s.passwordTag(stored))) {
		return nil, common.ErrUnauthorized.WithDetails("Session predates a password change.")
	}
	return claims, nil
}

// Logout revokes the session until its natural expiry.
func (s *SessionService) Logout(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if sessionID == "" {
		return nil
	}
	return s.blocklist.Revoke(ctx, sessionID, expiresAt)
}

// ChangePassword stores a new bcrypt hash after checking the current password.
// The stored hash takes precedence over ADMIN_PASSWORD from then on. Every
// session issued before the change stops validating; the caller gets a fresh one.
func (s *SessionService) ChangePassword(ctx context.Context, current, next string) (string, time.Time, error) {
	if _, err := s.checkPassword(ctx, current); err != nil {
		return "", time.Time{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return "", time.Time{}, common.ErrBadRequest.WithDetails("New password cannot be used.")
	}
	if err := s.passwords.SetAdminPasswordHash(ctx, string(hash)); err != nil {
		s.logger.Error("Failed to store admin password hash", zap.Error(err))
		return "", time.Time{}, err
	}
	s.logger.Info("Admin password changed, earlier sessions revoked")
	return s.issue(s.passwordTag(string(hash)))
}

// passwordTag fingerprints the stored hash. It is empty while ADMIN_PASSWORD is
// in use, since that hash is salted afresh on every start.
func (s *SessionService) passwordTag(storedHash string) string {
	if storedHash == "" {
		return ""
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(storedHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:12])
}

// checkPassword returns the stored hash it compared against, "" for ADMIN_PASSWORD.
func (s *SessionService) checkPassword(ctx context.Context, password string) (string, error) {
	stored, err := s.passwords.AdminPasswordHash(ctx)
	if err != nil {
		s.logger.Error("Failed to read admin password hash", zap.Error(err))
		return "", err
	}

	hash := []byte(stored)
	if stored == "" {
		hash = s.envHash
	}
	if len(hash) == 0 {
		return "", common.ErrServiceUnavailable.WithDetails("Admin password is not configured.")
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Error("Stored admin password hash is unusable", zap.Error(err))
		}
		return "", common.ErrUnauthorized.WithDetails("Invalid password.")
	}
	return stored, nil
}

func (s *SessionService) issue(passwordTag string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		PasswordTag: passwordTag,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to sign session token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("could not sign session token: %w", err)
	}
	return token, expiresAt, nil
}
