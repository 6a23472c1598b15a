package middlewares

import (
	"strconv"
	"time"

	"todohub/internal/core/telemetry"
	. "todohub/pkg/config"
	. "todohub/pkg/response"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// SetupGinMiddlewareWithConfig installs the middleware chain in order and
// returns the response cache, or nil when caching is disabled, so the caller
// can invalidate it on writes.
func SetupGinMiddlewareWithConfig(router *gin.Engine, metrics *telemetry.AppMetrics, logger *LokiLogger, config *AppConfig) *ResponseCache {
	httpsEnforcer := NewHTTPSEnforcer(config.EnforceHTTPS, logger.Zap())
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(config.ServiceName))

	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(MetricsMiddleware(metrics))

	if config.RateLimitEnabled {
		rateLimiter := NewRateLimiter(logger.Zap(), metrics)
		rateLimiter.ApplyConfig(config.RateLimitConfigs)
		router.Use(rateLimiter.RateLimitMiddleware())
	}

	var responseCache *ResponseCache

	if config.CacheEnabled {
		responseCache = NewResponseCache(config.CacheTTL, logger.Zap(), metrics)
		router.Use(responseCache.CacheMiddleware())
	}

	return responseCache
}
