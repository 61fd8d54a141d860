// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yad2_tracker/internal/auth"
	"yad2_tracker/internal/config"
	"yad2_tracker/internal/endpoint"
	"yad2_tracker/internal/jobs"
	"yad2_tracker/internal/listing"
	"yad2_tracker/internal/middleware"
	"yad2_tracker/internal/notification"
	"yad2_tracker/internal/platform/metrics"
	"yad2_tracker/internal/settings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthChecker reports whether the store answers.
type HealthChecker interface {
	TestConnection(ctx context.Context) bool
	Durable() bool
}

// Server struct holds the dependencies for the admin HTTP server and the
// scheduled jobs it runs alongside.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	trackerJob *jobs.TrackerJob
	cleanupJob *jobs.CleanupJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	health HealthChecker,
	m *metrics.Metrics,
	sessions middleware.SessionValidator,
	authHandler *auth.Handler,
	endpointHandler *endpoint.Handler,
	settingsHandler *settings.Handler,
	listingHandler *listing.Handler,
	notificationHandler *notification.Handler,
	trackerJob *jobs.TrackerJob,
	cleanupJob *jobs.CleanupJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(sessions, logger.Named("AuthMiddleware"))

	// --- Setup Routes ---
	router.GET("/health", healthHandler(health))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1, authMW)
	endpointHandler.RegisterRoutes(v1, authMW)
	settingsHandler.RegisterRoutes(v1, authMW)
	listingHandler.RegisterRoutes(v1, authMW)
	notificationHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		trackerJob: trackerJob,
		cleanupJob: cleanupJob,
	}, nil
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if !health.TestConnection(ctx) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "durable": health.Durable()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "UP", "durable": health.Durable()})
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Fatal delivers a persistence failure from a scheduled run. It is nil when no
// tracker job is attached, and a nil channel blocks forever in a select.
func (s *Server) Fatal() <-chan error {
	if s.trackerJob == nil {
		return nil
	}
	return s.trackerJob.Fatal()
}

// Start starts the scheduled jobs, then serves HTTP until Shutdown.
func (s *Server) Start() error {
	if s.trackerJob != nil {
		if err := s.trackerJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start tracker job", zap.Error(err))
			return err
		}
	} else {
		s.logger.Info("Tracker job is not configured, skipping start.")
	}
	if s.cleanupJob != nil {
		if err := s.cleanupJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start cleanup job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the jobs, waiting for an in-flight run, then drains HTTP.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.trackerJob != nil {
		s.trackerJob.Stop()
	}
	if s.cleanupJob != nil {
		s.cleanupJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
