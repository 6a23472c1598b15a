package http

import (
	"context"
	"net/http"

	"todohub/internal/adapter/database/memory"
	"todohub/internal/adapter/http/handler"
	"todohub/internal/adapter/http/routes"
	"todohub/internal/adapter/mcp"
	"todohub/internal/core/port"
	"todohub/internal/core/service"
	"todohub/internal/core/telemetry"
	"todohub/pkg/config"
)

// Container owns the single store of the process and every adapter built
// on it.
type Container struct {
	TodoRepo    port.TodoStore
	TodoService *service.TodoService

	TodoHandler *handler.TodoHandler
	PageHandler *handler.PageHandler

	// MCPServer is nil when the MCP surface is disabled.
	MCPServer *mcp.Server

	mcpPath string
}

func NewContainer(cfg *config.AppConfig, logger *config.LokiLogger, probe port.Telemetry, metrics *telemetry.AppMetrics) *Container {
	todoRepo := memory.NewTodoRepository(memory.WithTelemetry(probe))
	todoSvc := service.NewTodoService(todoRepo, probe)

	if metrics != nil {
		todoSvc.Subscribe(port.ChangeListenerFunc(func(ctx context.Context, _ port.ChangeKind, _ int) {
			metrics.SetTodoCount(ctx, todoRepo.Len(ctx))
		}))
	}

	container := &Container{
		TodoRepo:    todoRepo,
		TodoService: todoSvc,
		TodoHandler: handler.NewTodoHandler(todoSvc, logger),
	}

	if cfg.MCPEnabled {
		container.MCPServer = mcp.NewServer(todoSvc, cfg.ServiceVersion, probe, logger.Logger)
		container.mcpPath = cfg.MCPPath
	}

	container.PageHandler = handler.NewPageHandler(cfg.ServiceName, cfg.ServiceVersion, container.mcpPath)

	return container
}

// Handlers lists the gin handlers to mount. metricsHandler may be nil.
func (c *Container) Handlers(metricsHandler http.Handler) routes.HandlersConfig {
	handlers := routes.HandlersConfig{
		TodoHandler:    c.TodoHandler,
		PageHandler:    c.PageHandler,
		MetricsHandler: metricsHandler,
	}

	if c.MCPServer != nil {
		handlers.MCPHandler = c.MCPServer.HTTPHandler()
		handlers.MCPPath = c.mcpPath
	}

	return handlers
}
