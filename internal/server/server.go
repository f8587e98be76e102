package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httperr "github.com/logistics-lab/palletbook/internal/core/errors"
	"github.com/logistics-lab/palletbook/pkg/logger"
)

const (
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// HealthChecker is an interface for components that can report their health status.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouteRegistrar is implemented by every service that exposes HTTP routes.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

type Server struct {
	Engine *gin.Engine
	Addr   string
	health HealthChecker
}

// New builds the gin engine with request id, access log and panic recovery
// middleware, the /health endpoint and, when metrics is non-nil, /metrics.
func New(addr string, mode string, health HealthChecker, metrics http.Handler) *Server {
	if mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery())

	s := &Server{
		Engine: r,
		Addr:   addr,
		health: health,
	}

	r.GET("/health", s.healthHandler)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	return s
}

// Mount registers the routes of each service on the engine.
func (s *Server) Mount(services ...RouteRegistrar) {
	for _, svc := range services {
		svc.RegisterRoutes(s.Engine)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			logger.Error(ctx, "[Server] Health check failed: store unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
				ErrorType: httperr.HttpServiceUnavailableErr,
				Message:   "store unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"store":  "connected",
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "[Server] Starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		logger.Info(context.Background(), "[Server] Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "[Server] HTTP server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
