package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yad2_tracker/internal/auth"
	"yad2_tracker/internal/common"
	"yad2_tracker/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockSessionValidator is a mock type for SessionValidator
type MockSessionValidator struct {
	mock.Mock
}

func (m *MockSessionValidator) Validate(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(v SessionValidator) *gin.Engine {
	r := gin.New()
	r.GET("/private", AuthMiddleware(v, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"session": common.GetSessionIDFromContext(c),
			"expires": common.GetSessionExpiryFromContext(c).Unix(),
		})
	})
	return r
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	v := new(MockSessionValidator)
	w := httptest.NewRecorder()
	protectedRouter(v).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	v.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
}

func TestAuthMiddleware_CookieAndBearer(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "sid-9",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}}

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: "tok"})
		}},
		{"bearer", func(r *http.Request) {
			r.Header.Set(common.AuthorizationHeader, "Bearer tok")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := new(MockSessionValidator)
			v.On("Validate", mock.Anything, "tok").Return(claims, nil).Once()

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			protectedRouter(v).ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body struct {
				Session string `json:"session"`
				Expires int64  `json:"expires"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "sid-9", body.Session)
			assert.Equal(t, expiresAt.Unix(), body.Expires)
			v.AssertExpectations(t)
		})
	}
}

func TestAuthMiddleware_InvalidSession(t *testing.T) {
	v := new(MockSessionValidator)
	v.On("Validate", mock.Anything, "stale").Return(nil, common.ErrUnauthorized.WithDetails("Invalid or expired session."))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(common.AuthorizationHeader, "Bearer stale")
	w := httptest.NewRecorder()
	protectedRouter(v).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestZapLogger_RequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(ZapLogger(zap.New(core), &config.Config{GinMode: gin.TestMode}))
	r.GET("/ping", func(c *gin.Context) {
		_, hasLogger := c.Get(common.LoggerKey)
		assert.True(t, hasLogger)
		c.String(http.StatusOK, c.GetString(common.RequestIDKey))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("Request handled").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "given-id", entries[1].ContextMap()["request_id"])
}

func TestZapLogger_ServerErrorLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(ZapLogger(zap.New(core), &config.Config{GinMode: gin.ReleaseMode}))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	entries := logs.FilterMessage("Server error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/api-error", func(c *gin.Context) {
		_ = c.Error(common.ErrConflict.WithDetails("dup"))
	})
	r.GET("/plain-error", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/api-error", http.StatusConflict, "CONFLICT"},
		{"/plain-error", http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"/missing", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
