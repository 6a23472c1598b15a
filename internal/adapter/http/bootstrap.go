package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"todohub/internal/adapter/http/routes"
	"todohub/internal/core/telemetry"
	"todohub/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	srv    *http.Server
	router *gin.Engine
	logger *config.LokiLogger
	config *config.AppConfig
}

// NewServer builds the router for container and subscribes the response
// cache, if any, to todo changes.
func NewServer(cfg *config.AppConfig, container *Container, metrics *telemetry.AppMetrics, logger *config.LokiLogger, metricsHandler http.Handler) *Server {
	router, cache := routes.SetupRouterWithConfig(container.Handlers(metricsHandler), metrics, logger, cfg)

	if cache != nil {
		container.TodoService.Subscribe(cache)
	}

	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Streamable MCP responses may be long lived.
			WriteTimeout: 0,
		},
		router: router,
		logger: logger,
		config: cfg,
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Logger.Info("Server starting",
		zap.String("addr", s.srv.Addr),
		zap.String("environment", s.config.Environment),
		zap.Bool("rate_limit_enabled", s.config.RateLimitEnabled),
		zap.Bool("cache_enabled", s.config.CacheEnabled),
		zap.Bool("https_enforced", s.config.EnforceHTTPS),
		zap.Bool("mcp_enabled", s.config.MCPEnabled),
	)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Logger.Info("Shutting down HTTP server")

	return s.srv.Shutdown(ctx)
}
