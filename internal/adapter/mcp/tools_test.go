package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todohub/internal/adapter/database/memory"
	"todohub/internal/core/service"
	"todohub/internal/core/telemetry"
	. "todohub/pkg/test"
)

var ctx = context.Background()

type TodoToolsSuite struct {
	suite.Suite
	Registry *prometheus.Registry
	Tools    *TodoTools
	Handlers map[string]server.ToolHandlerFunc
}

func (s *TodoToolsSuite) SetupTest() {
	clock := NewClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	logger := otelzap.New(zap.NewNop())

	s.Registry = prometheus.NewRegistry()
	probe := telemetry.NewOTELProbe(logger, telemetry.NewAppMetrics(s.Registry))

	store := memory.NewTodoRepository(memory.WithClock(clock.Now))
	s.Tools = NewTodoTools(service.NewTodoService(store, probe), probe, logger)

	s.Handlers = map[string]server.ToolHandlerFunc{}
	for _, tool := range s.Tools.ServerTools() {
		s.Handlers[tool.Tool.Name] = tool.Handler
	}
}

func TestTodoToolsSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoToolsSuite))
}

func request(name string, args any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	return req
}

func (s *TodoToolsSuite) call(name string, args any) *mcpgo.CallToolResult {
	handler, ok := s.Handlers[name]
	Expect(ok).To(BeTrue(), "tool %s is not registered", name)

	result, err := handler(ctx, request(name, args))
	Expect(err).To(BeNil())
	Expect(result).NotTo(BeNil())

	return result
}

func text(result *mcpgo.CallToolResult) string {
	Expect(result.Content).To(HaveLen(1))

	content, ok := result.Content[0].(mcpgo.TextContent)
	Expect(ok).To(BeTrue())

	return content.Text
}

func (s *TodoToolsSuite) create(title string, extra ...map[string]any) {
	args := map[string]any{"title": title}
	for _, e := range extra {
		for k, v := range e {
			args[k] = v
		}
	}

	result := s.call("create_todo", args)
	Expect(result.IsError).To(BeFalse(), text(result))
}

func (s *TodoToolsSuite) TestRegistersEveryTool() {
	names := []string{}
	for name := range s.Handlers {
		names = append(names, name)
	}

	Expect(names).To(ConsistOf(
		"list_todos", "get_todo", "create_todo", "update_todo",
		"update_todo_status", "delete_todo", "search_todos", "get_todo_stats",
	))
}

func (s *TodoToolsSuite) TestCreateTodo() {
	result := s.call("create_todo", map[string]any{"title": "Learn FastAPI", "priority": float64(3)})

	Expect(result.IsError).To(BeFalse())
	Expect(text(result)).To(Equal("✅ Todo created successfully!\n• ID: 1\n• Title: Learn FastAPI\n• Status: pending\n• Priority: 3"))
}

func (s *TodoToolsSuite) TestCreateTodo_InvalidArguments() {
	result := s.call("create_todo", map[string]any{"priority": 2.5, "description": 7})

	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(Equal("Invalid arguments: title is required; description must be a string; priority must be an integer"))

	result = s.call("list_todos", nil)
	Expect(text(result)).To(Equal("Found 0 todos:\n\n"))
}

func (s *TodoToolsSuite) TestCreateTodo_ValidationError() {
	result := s.call("create_todo", map[string]any{"title": "", "priority": float64(9)})

	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(HavePrefix("Validation error: title: title is required; priority: "))

	result = s.call("create_todo", map[string]any{"title": "ok"})
	Expect(text(result)).To(ContainSubstring("• ID: 1\n"))
}

func (s *TodoToolsSuite) TestGetTodo() {
	s.create("Read", map[string]any{"description": "chapter 3", "status": "in_progress"})
	s.create("Write")

	Expect(text(s.call("get_todo", map[string]any{"todo_id": float64(1)}))).To(Equal("Todo Details:\n" +
		"• ID: 1\n" +
		"• Title: Read\n" +
		"• Description: chapter 3\n" +
		"• Status: in_progress\n" +
		"• Priority: 1\n" +
		"• Created: 2025-05-01 08:00:00\n" +
		"• Updated: 2025-05-01 08:00:00"))

	Expect(text(s.call("get_todo", map[string]any{"todo_id": float64(2)}))).To(ContainSubstring("• Description: No description\n"))
}

func (s *TodoToolsSuite) TestGetTodo_NotFoundIsNotAnError() {
	result := s.call("get_todo", map[string]any{"todo_id": float64(99)})

	Expect(result.IsError).To(BeFalse())
	Expect(text(result)).To(Equal("Todo with ID 99 not found"))
}

func (s *TodoToolsSuite) TestGetTodo_InvalidID() {
	for _, id := range []any{"abc", 1.5, nil, 1e19, -1e19} {
		result := s.call("get_todo", map[string]any{"todo_id": id})

		Expect(result.IsError).To(BeTrue())
		Expect(text(result)).To(HavePrefix("Invalid arguments: todo_id"))
	}
}

func (s *TodoToolsSuite) TestCreateTodo_IntegerOutOfRange() {
	result := s.call("create_todo", map[string]any{"title": "Too big", "priority": 1e19})

	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(Equal("Invalid arguments: priority must be an integer"))
	Expect(text(s.call("list_todos", nil))).To(Equal("Found 0 todos:\n\n"))
}

func (s *TodoToolsSuite) TestMalformedArguments() {
	result := s.call("get_todo", []any{1})

	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(HavePrefix("Error executing tool 'get_todo': arguments must be an object"))
}

func (s *TodoToolsSuite) TestUpdateTodo() {
	s.create("Learn FastAPI", map[string]any{"description": "docs", "priority": float64(3)})

	result := s.call("update_todo", map[string]any{"todo_id": float64(1), "status": "in_progress"})

	Expect(result.IsError).To(BeFalse())
	Expect(text(result)).To(Equal("✅ Todo updated successfully!\n• ID: 1\n• Title: Learn FastAPI\n• Status: in_progress\n• Priority: 3"))

	s.call("update_todo", map[string]any{"todo_id": float64(1), "description": nil})
	Expect(text(s.call("get_todo", map[string]any{"todo_id": float64(1)}))).To(ContainSubstring("• Description: No description\n"))
}

func (s *TodoToolsSuite) TestUpdateTodo_Failures() {
	s.create("Keep")

	result := s.call("update_todo", map[string]any{"todo_id": float64(1), "title": "Changed", "priority": float64(0)})
	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(HavePrefix("Validation error: priority: "))
	Expect(text(s.call("get_todo", map[string]any{"todo_id": float64(1)}))).To(ContainSubstring("• Title: Keep\n"))

	result = s.call("update_todo", map[string]any{"todo_id": float64(5), "title": "x"})
	Expect(result.IsError).To(BeFalse())
	Expect(text(result)).To(Equal("Todo with ID 5 not found"))
}

func (s *TodoToolsSuite) TestUpdateTodoStatus() {
	s.create("Ship")

	result := s.call("update_todo_status", map[string]any{"todo_id": float64(1), "status": "completed"})
	Expect(text(result)).To(Equal("✅ Todo status updated to 'completed'!\n• ID: 1\n• Title: Ship\n• New Status: completed"))

	result = s.call("update_todo_status", map[string]any{"todo_id": float64(1), "status": "archived"})
	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(Equal("Validation error: status: status must be one of: pending in_progress completed"))

	result = s.call("update_todo_status", map[string]any{"todo_id": float64(1)})
	Expect(text(result)).To(Equal("Invalid arguments: status is required"))
}

func (s *TodoToolsSuite) TestDeleteTodo() {
	s.create("Temp")

	Expect(text(s.call("delete_todo", map[string]any{"todo_id": float64(1)}))).To(Equal("✅ Todo with ID 1 deleted successfully"))

	result := s.call("delete_todo", map[string]any{"todo_id": float64(1)})
	Expect(result.IsError).To(BeFalse())
	Expect(text(result)).To(Equal("Todo with ID 1 not found"))
}

func (s *TodoToolsSuite) TestListAndSearch() {
	s.create("Buy milk", map[string]any{"status": "completed"})
	s.create("Buy eggs")
	s.create("Walk the dog", map[string]any{"description": "buy treats"})

	Expect(text(s.call("list_todos", map[string]any{}))).To(Equal("Found 3 todos:\n\n" +
		"• Buy milk (ID: 1, Status: completed, Priority: 1)\n" +
		"• Buy eggs (ID: 2, Status: pending, Priority: 1)\n" +
		"• Walk the dog (ID: 3, Status: pending, Priority: 1)"))

	Expect(text(s.call("list_todos", map[string]any{"status": "pending", "search": "BUY"}))).To(Equal("Found 2 todos:\n\n" +
		"• Buy eggs (ID: 2, Status: pending, Priority: 1)\n" +
		"• Walk the dog (ID: 3, Status: pending, Priority: 1)"))

	Expect(text(s.call("search_todos", map[string]any{"query": "milk"}))).To(Equal("Search results for 'milk' (1 found):\n\n" +
		"• Buy milk (ID: 1, Status: completed)"))

	Expect(text(s.call("search_todos", map[string]any{"query": "zzz"}))).To(Equal("No todos found matching 'zzz'"))

	result := s.call("list_todos", map[string]any{"status": "done"})
	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(HavePrefix("Validation error: status: "))
}

func (s *TodoToolsSuite) TestTodoStats() {
	Expect(text(s.call("get_todo_stats", nil))).To(Equal("📊 Todo Statistics:\n" +
		"• Total todos: 0\n" +
		"• Pending: 0\n" +
		"• In Progress: 0\n" +
		"• Completed: 0\n" +
		"• Completion Rate: 0%"))

	s.create("a", map[string]any{"status": "completed"})
	s.create("b")
	Expect(text(s.call("get_todo_stats", nil))).To(HaveSuffix("• Completion Rate: 50.0%"))

	s.create("c", map[string]any{"status": "in_progress"})
	Expect(text(s.call("get_todo_stats", nil))).To(HaveSuffix("• In Progress: 1\n• Completed: 1\n• Completion Rate: 33.33%"))
}

func (s *TodoToolsSuite) TestPanicIsIsolated() {
	handler := s.Tools.Handler("explode", func(ctx context.Context, args *arguments) (string, error) {
		panic("kaboom")
	})

	result, err := handler(ctx, request("explode", nil))

	Expect(err).To(BeNil())
	Expect(result.IsError).To(BeTrue())
	Expect(text(result)).To(Equal("Error executing tool 'explode': panic: kaboom"))

	Expect(text(s.call("list_todos", nil))).To(Equal("Found 0 todos:\n\n"))
}

func (s *TodoToolsSuite) TestRecordsToolOutcomes() {
	s.call("get_todo", map[string]any{"todo_id": float64(1)})
	s.call("get_todo", map[string]any{})

	families, err := s.Registry.Gather()
	Expect(err).To(BeNil())

	outcomes := map[string]float64{}

	for _, family := range families {
		if family.GetName() != "mcp_tool_invocations_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := []string{}
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetValue())
			}

			outcomes[strings.Join(labels, "/")] = metric.GetCounter().GetValue()
		}
	}

	Expect(outcomes).To(HaveKeyWithValue("not_found/get_todo", 1.0))
	Expect(outcomes).To(HaveKeyWithValue("invalid_arguments/get_todo", 1.0))
}

func TestServer_ListsTools(t *testing.T) {
	RegisterTestingT(t)

	store := memory.NewTodoRepository()
	srv := NewServer(service.NewTodoService(store, nil), "test", nil, nil)

	response := srv.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	raw, err := json.Marshal(response)
	Expect(err).To(BeNil())

	for _, name := range []string{"list_todos", "get_todo", "create_todo", "update_todo", "update_todo_status", "delete_todo", "search_todos", "get_todo_stats"} {
		Expect(string(raw)).To(ContainSubstring(`"name":"` + name + `"`))
	}

	Expect(srv.HTTPHandler()).NotTo(BeNil())
}
