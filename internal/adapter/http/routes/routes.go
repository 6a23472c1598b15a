package routes

import (
	"net/http"

	"todohub/internal/adapter/http/handler"
	"todohub/internal/adapter/http/helper"
	"todohub/internal/core/telemetry"
	. "todohub/pkg/config"
	. "todohub/pkg/middlewares"
	. "todohub/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HandlersConfig struct {
	TodoHandler *handler.TodoHandler
	PageHandler *handler.PageHandler
	// MCPHandler is mounted on every method of MCPPath when set.
	MCPHandler     http.Handler
	MCPPath        string
	MetricsHandler http.Handler
}

// SetupRouterWithConfig builds the engine with the full middleware chain. The
// returned cache is nil when caching is disabled; otherwise it must be
// subscribed to todo changes.
func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *LokiLogger, config *AppConfig) (*gin.Engine, *ResponseCache) {
	router := gin.New()

	cache := SetupGinMiddlewareWithConfig(router, metrics, logger, config)

	router.Use(recovery(logger))
	router.Use(corsMiddleware())

	registerRoutes(router, handlers)

	return router, cache
}

// SetupRouterForTests skips the middleware chain.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	router := gin.New()

	router.Use(recovery(NewNopLogger()))
	router.Use(corsMiddleware())

	registerRoutes(router, handlers)

	return router
}

func registerRoutes(router *gin.Engine, handlers HandlersConfig) {
	if handlers.PageHandler != nil {
		router.GET("/", handlers.PageHandler.Landing)
		router.GET("/health", handlers.PageHandler.Health)
	}

	if handlers.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(handlers.MetricsHandler))
	}

	if handlers.TodoHandler != nil {
		setupTodoRoutes(router, handlers.TodoHandler)
	}

	if handlers.MCPHandler != nil && handlers.MCPPath != "" {
		router.Any(handlers.MCPPath, gin.WrapH(handlers.MCPHandler))
	}
}

func setupTodoRoutes(router *gin.Engine, todoHandler *handler.TodoHandler) {
	todos := router.Group("/todos")
	{
		todos.GET("", todoHandler.GetAllTodos)
		todos.POST("", todoHandler.CreateTodo)
		todos.GET("/stats/summary", todoHandler.GetStats)
		todos.GET("/:id", todoHandler.GetTodo)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.PATCH("/:id/status", todoHandler.UpdateTodoStatus)
		todos.DELETE("/:id", todoHandler.DeleteTodo)
	}
}

func recovery(logger *LokiLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorWithTrace(c.Request.Context(), "Recovered from panic",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)

		helper.SendInternalError(c, "Internal server error")
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Mcp-Session-Id")
		c.Header("Access-Control-Expose-Headers", "Mcp-Session-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
