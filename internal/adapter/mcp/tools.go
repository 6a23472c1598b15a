package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todohub/internal/core/domain"
	"todohub/internal/core/port"
	"todohub/internal/core/telemetry"
)

var statusValues = []string{
	domain.TodoStatusPending.String(),
	domain.TodoStatusInProgress.String(),
	domain.TodoStatusCompleted.String(),
}

// invocation runs one tool against decoded arguments. On a not-found error
// the returned text is still shown to the caller.
type invocation func(ctx context.Context, args *arguments) (string, error)

// TodoTools exposes the todo service as MCP tools.
type TodoTools struct {
	svc       port.TodoService
	telemetry port.Telemetry
	logger    *otelzap.Logger
}

func NewTodoTools(svc port.TodoService, probe port.Telemetry, logger *otelzap.Logger) *TodoTools {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &TodoTools{
		svc:       svc,
		telemetry: probe,
		logger:    logger,
	}
}

func (t *TodoTools) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: listTodosTool(), Handler: t.Handler("list_todos", t.listTodos)},
		{Tool: getTodoTool(), Handler: t.Handler("get_todo", t.getTodo)},
		{Tool: createTodoTool(), Handler: t.Handler("create_todo", t.createTodo)},
		{Tool: updateTodoTool(), Handler: t.Handler("update_todo", t.updateTodo)},
		{Tool: updateTodoStatusTool(), Handler: t.Handler("update_todo_status", t.updateTodoStatus)},
		{Tool: deleteTodoTool(), Handler: t.Handler("delete_todo", t.deleteTodo)},
		{Tool: searchTodosTool(), Handler: t.Handler("search_todos", t.searchTodos)},
		{Tool: todoStatsTool(), Handler: t.Handler("get_todo_stats", t.todoStats)},
	}
}

// Handler isolates one call: a failure or panic becomes an error result and
// never reaches the transport.
func (t *TodoTools) Handler(name string, fn invocation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpgo.CallToolRequest) (result *mcpgo.CallToolResult, err error) {
		start := time.Now()
		outcome := telemetry.OutcomeSuccess

		defer func() {
			if r := recover(); r != nil {
				failure := &domain.ToolInvocationError{Tool: name, Err: fmt.Errorf("panic: %v", r)}

				t.logger.Ctx(ctx).Error("Tool call panicked",
					zap.String("tool", name),
					zap.Any("panic", r))

				result, err = mcpgo.NewToolResultError(failure.Error()), nil
				outcome = telemetry.OutcomeError
			}

			t.telemetry.RecordToolInvocation(ctx, name, outcome, time.Since(start))
		}()

		args, argsErr := newArguments(req)

		var text string
		var callErr error

		if argsErr != nil {
			callErr = argsErr
		} else {
			text, callErr = fn(ctx, args)
		}

		result, outcome = t.toResult(ctx, name, text, callErr)

		return result, nil
	}
}

func (t *TodoTools) toResult(ctx context.Context, name, text string, err error) (*mcpgo.CallToolResult, string) {
	if err == nil {
		return mcpgo.NewToolResultText(text), telemetry.OutcomeSuccess
	}

	var argErr *ArgumentError

	if errors.As(err, &argErr) {
		return mcpgo.NewToolResultError(argErr.Error()), telemetry.OutcomeInvalid
	}

	if validationErr, ok := domain.AsValidationError(err); ok {
		return mcpgo.NewToolResultError(validationMessage(validationErr)), telemetry.OutcomeValidation
	}

	if domain.IsNotFound(err) {
		return mcpgo.NewToolResultText(text), telemetry.OutcomeNotFound
	}

	failure := &domain.ToolInvocationError{Tool: name, Err: err}

	t.logger.Ctx(ctx).Error("Tool call failed",
		zap.String("tool", name),
		zap.Error(err))

	return mcpgo.NewToolResultError(failure.Error()), telemetry.OutcomeError
}

func validationMessage(err *domain.ValidationError) string {
	parts := make([]string, 0, len(err.Violations))

	for _, v := range err.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}

	return "Validation error: " + strings.Join(parts, "; ")
}

func listTodosTool() mcpgo.Tool {
	return mcpgo.NewTool("list_todos",
		mcpgo.WithDescription("List all todos with optional filtering by status and search"),
		mcpgo.WithString("status",
			mcpgo.Description("Filter todos by status"),
			mcpgo.Enum(statusValues...),
		),
		mcpgo.WithString("search",
			mcpgo.Description("Search todos by title or description"),
		),
	)
}

func (t *TodoTools) listTodos(ctx context.Context, args *arguments) (string, error) {
	status := args.optionalString("status")
	search := args.optionalString("search")

	if err := args.err(); err != nil {
		return "", err
	}

	filter := domain.TodoFilter{Query: search.Value}

	if status.Set {
		parsed, err := domain.ParseTodoStatus(status.Value)
		if err != nil {
			return "", domain.NewValidationError(err, domain.Violation{
				Field:   "status",
				Rule:    "oneof",
				Param:   strings.Join(statusValues, " "),
				Message: "status must be one of: " + strings.Join(statusValues, " "),
			})
		}

		filter.Status = parsed
	}

	return renderList(t.svc.List(ctx, filter)), nil
}

func getTodoTool() mcpgo.Tool {
	return mcpgo.NewTool("get_todo",
		mcpgo.WithDescription("Get a specific todo by ID"),
		mcpgo.WithNumber("todo_id",
			mcpgo.Required(),
			mcpgo.Description("The integer ID of the todo to retrieve"),
		),
	)
}

func (t *TodoTools) getTodo(ctx context.Context, args *arguments) (string, error) {
	id := args.requiredInt("todo_id")

	if err := args.err(); err != nil {
		return "", err
	}

	todo, err := t.svc.Get(ctx, id)
	if err != nil {
		return renderNotFound(id), err
	}

	return renderDetails(todo), nil
}

func createTodoTool() mcpgo.Tool {
	return mcpgo.NewTool("create_todo",
		mcpgo.WithDescription("Create a new todo"),
		mcpgo.WithString("title",
			mcpgo.Required(),
			mcpgo.Description("Todo title (required, 1-200 characters)"),
			mcpgo.MinLength(1),
			mcpgo.MaxLength(domain.MaxTitleLength),
		),
		mcpgo.WithString("description",
			mcpgo.Description("Todo description (optional, max 1000 characters)"),
			mcpgo.MaxLength(domain.MaxDescriptionLength),
		),
		mcpgo.WithNumber("priority",
			mcpgo.Description("Integer priority level (1-5, default: 1)"),
			mcpgo.Min(domain.MinPriority),
			mcpgo.Max(domain.MaxPriority),
		),
		mcpgo.WithString("status",
			mcpgo.Description("Todo status (default: pending)"),
			mcpgo.Enum(statusValues...),
		),
	)
}

func (t *TodoTools) createTodo(ctx context.Context, args *arguments) (string, error) {
	draft := domain.TodoDraft{
		Title:       args.requiredString("title"),
		Description: pointer(args.optionalString("description")),
		Status:      pointer(args.optionalStatus("status")),
		Priority:    pointer(args.optionalInt("priority")),
	}

	if err := args.err(); err != nil {
		return "", err
	}

	todo, err := t.svc.Create(ctx, draft)
	if err != nil {
		return "", err
	}

	return renderSaved("Todo created successfully!", todo), nil
}

func updateTodoTool() mcpgo.Tool {
	return mcpgo.NewTool("update_todo",
		mcpgo.WithDescription("Update an existing todo"),
		mcpgo.WithNumber("todo_id",
			mcpgo.Required(),
			mcpgo.Description("The integer ID of the todo to update"),
		),
		mcpgo.WithString("title",
			mcpgo.Description("New title (1-200 characters)"),
			mcpgo.MinLength(1),
			mcpgo.MaxLength(domain.MaxTitleLength),
		),
		mcpgo.WithString("description",
			mcpgo.Description("New description (max 1000 characters, null clears it)"),
			mcpgo.MaxLength(domain.MaxDescriptionLength),
		),
		mcpgo.WithNumber("priority",
			mcpgo.Description("New integer priority level (1-5)"),
			mcpgo.Min(domain.MinPriority),
			mcpgo.Max(domain.MaxPriority),
		),
		mcpgo.WithString("status",
			mcpgo.Description("New status"),
			mcpgo.Enum(statusValues...),
		),
	)
}

func (t *TodoTools) updateTodo(ctx context.Context, args *arguments) (string, error) {
	id := args.requiredInt("todo_id")

	patch := domain.TodoPatch{
		Title:       args.optionalString("title"),
		Description: args.nullableString("description"),
		Status:      args.optionalStatus("status"),
		Priority:    args.optionalInt("priority"),
	}

	if err := args.err(); err != nil {
		return "", err
	}

	todo, err := t.svc.Update(ctx, id, patch)
	if err != nil {
		return renderNotFound(id), err
	}

	return renderSaved("Todo updated successfully!", todo), nil
}

func updateTodoStatusTool() mcpgo.Tool {
	return mcpgo.NewTool("update_todo_status",
		mcpgo.WithDescription("Update only the status of a todo"),
		mcpgo.WithNumber("todo_id",
			mcpgo.Required(),
			mcpgo.Description("The integer ID of the todo to update"),
		),
		mcpgo.WithString("status",
			mcpgo.Required(),
			mcpgo.Description("New status"),
			mcpgo.Enum(statusValues...),
		),
	)
}

func (t *TodoTools) updateTodoStatus(ctx context.Context, args *arguments) (string, error) {
	id := args.requiredInt("todo_id")
	status := domain.TodoStatus(args.requiredString("status"))

	if err := args.err(); err != nil {
		return "", err
	}

	todo, err := t.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		return renderNotFound(id), err
	}

	return renderStatusChanged(todo), nil
}

func deleteTodoTool() mcpgo.Tool {
	return mcpgo.NewTool("delete_todo",
		mcpgo.WithDescription("Delete a todo by ID"),
		mcpgo.WithNumber("todo_id",
			mcpgo.Required(),
			mcpgo.Description("The integer ID of the todo to delete"),
		),
	)
}

func (t *TodoTools) deleteTodo(ctx context.Context, args *arguments) (string, error) {
	id := args.requiredInt("todo_id")

	if err := args.err(); err != nil {
		return "", err
	}

	if !t.svc.Delete(ctx, id) {
		return renderNotFound(id), domain.NotFoundError(id)
	}

	return renderDeleted(id), nil
}

func searchTodosTool() mcpgo.Tool {
	return mcpgo.NewTool("search_todos",
		mcpgo.WithDescription("Search todos by title or description"),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("Search query"),
		),
	)
}

func (t *TodoTools) searchTodos(ctx context.Context, args *arguments) (string, error) {
	query := args.requiredString("query")

	if err := args.err(); err != nil {
		return "", err
	}

	return renderSearch(query, t.svc.Search(ctx, query)), nil
}

func todoStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("get_todo_stats",
		mcpgo.WithDescription("Get statistics about todos"),
	)
}

func (t *TodoTools) todoStats(ctx context.Context, _ *arguments) (string, error) {
	return renderStats(t.svc.Stats(ctx)), nil
}
