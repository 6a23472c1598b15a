package handler

import (
	"context"
	"net/http"
	"strconv"

	. "todohub/internal/adapter/http/helper"
	"todohub/internal/core/domain"
	"todohub/internal/core/model/request"
	"todohub/internal/core/model/response"
	"todohub/internal/core/port"
	"todohub/internal/core/validation"
	"todohub/pkg/config"
	. "todohub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *config.LokiLogger
}

func NewTodoHandler(svc port.TodoService, logger *config.LokiLogger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAllTodos"),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	var query request.TodoListQuery

	if err := c.ShouldBindQuery(&query); err != nil {
		SendBadRequestError(c, "query", "Invalid query parameters")
		return
	}

	filter := domain.TodoFilter{Query: query.Search}

	if query.Status != "" {
		status, err := domain.ParseTodoStatus(query.Status)
		if err != nil {
			SendFieldValidationError(c, "status", "status must be one of: pending in_progress completed")
			return
		}

		filter.Status = status
	}

	todos := t.svc.List(ctx, filter)

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, response.NewTodoListResponse(todos))
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := t.svc.Get(c.Request.Context(), id)

	if err != nil {
		SendServiceError(c, err, id)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "CreateTodo"),
	})
	defer span.End()

	var params request.TodoCreateRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBindingError(c, err)
		return
	}

	todo, err := t.svc.Create(ctx, params.ToDraft())

	if err != nil {
		AddSpanError(span, err)

		t.Logger.WarnWithTrace(ctx, "Failed to create todo",
			zap.Error(err),
			zap.Int("title_length", len(params.Title)),
		)

		SendServiceError(c, err, 0)
		return
	}

	span.SetAttributes(attribute.Int("todo.id", todo.ID))

	SendMessage(c, http.StatusCreated, "Todo created successfully", &todo)
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.UpdateTodo", []attribute.KeyValue{
		attribute.String("handler.operation", "UpdateTodo"),
		attribute.Int("todo.id", id),
	})
	defer span.End()

	var patch request.TodoUpdateRequest

	if err := c.ShouldBindJSON(&patch); err != nil {
		SendBindingError(c, err)
		return
	}

	todo, err := t.svc.Update(ctx, id, patch)

	if err != nil {
		AddSpanError(span, err)
		config.LogError(ctx, t.Logger, err, "Failed to update todo", zap.Int("todo_id", id))
		SendServiceError(c, err, id)
		return
	}

	SendMessage(c, http.StatusOK, "Todo updated successfully", &todo)
}

func (t *TodoHandler) UpdateTodoStatus(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	var params request.TodoStatusRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		SendBindingError(c, err)
		return
	}

	if err := validation.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo, err := t.svc.UpdateStatus(c.Request.Context(), id, *params.Status)

	if err != nil {
		SendServiceError(c, err, id)
		return
	}

	SendMessage(c, http.StatusOK, "Todo status updated successfully", &todo)
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	if !t.svc.Delete(c.Request.Context(), id) {
		SendNotFoundError(c, id)
		return
	}

	SendMessage(c, http.StatusOK, "Todo deleted successfully", nil)
}

func (t *TodoHandler) GetStats(c *gin.Context) {
	var stats domain.TodoStats

	SpanWrapper(c.Request.Context(), "handler.todo.GetStats", nil, func(ctx context.Context) error {
		stats = t.svc.Stats(ctx)
		return nil
	})

	SendSuccess(c, http.StatusOK, response.NewStatsResponse(stats))
}

func todoID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))

	if err != nil {
		SendFieldValidationError(c, "todo_id", "todo_id must be an integer")
		return 0, false
	}

	return id, true
}
