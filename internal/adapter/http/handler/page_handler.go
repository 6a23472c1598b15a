package handler

import (
	"net/http"
	"strings"

	"todohub/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	serviceName string
	version     string
	mcpPath     string
}

func NewPageHandler(serviceName, version, mcpPath string) *PageHandler {
	return &PageHandler{
		serviceName: serviceName,
		version:     version,
		mcpPath:     mcpPath,
	}
}

const landingPage = `<!DOCTYPE html>
<html>
<head>
    <title>Todo API</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background-color: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; }
        h1 { color: #333; text-align: center; }
        ul { color: #666; }
        code { background: #eee; padding: 2px 4px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Todo API</h1>
        <p>A simple todo service with a REST API and an MCP tool endpoint.</p>
        <ul>
            <li>Create, read, update and delete todos at <code>/todos</code></li>
            <li>Filter by status (pending, in_progress, completed) and search by title or description</li>
            <li>Priority levels 1 to 5</li>
            <li>Statistics at <code>/todos/stats/summary</code></li>
            <li>MCP tools at <code>{{MCP_PATH}}</code></li>
        </ul>
    </div>
</body>
</html>
`

func (p *PageHandler) Landing(c *gin.Context) {
	mcpPath := p.mcpPath
	if mcpPath == "" {
		mcpPath = "(disabled)"
	}

	page := strings.ReplaceAll(landingPage, "{{MCP_PATH}}", mcpPath)

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (p *PageHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, response.HealthResponse{
		Status:  "ok",
		Service: p.serviceName,
		Version: p.version,
	})
}
