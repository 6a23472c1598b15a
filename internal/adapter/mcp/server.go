package mcp

import (
	"context"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todohub/internal/core/port"
)

const ServerName = "todo-api-mcp"

type Server struct {
	mcp    *server.MCPServer
	logger *otelzap.Logger
}

func NewServer(svc port.TodoService, version string, probe port.Telemetry, logger *otelzap.Logger) *Server {
	tools := NewTodoTools(svc, probe, logger)

	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTools(tools.ServerTools()...)

	return &Server{
		mcp:    s,
		logger: tools.logger,
	}
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// ServeStdio blocks until ctx is done or in is closed. Protocol errors are
// logged through zap, which writes to stderr.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Logger))

	s.logger.Info("Serving MCP over stdio", zap.String("server", ServerName))

	return stdio.Listen(ctx, in, out)
}
