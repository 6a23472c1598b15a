package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"todohub/internal/core/domain"
	"todohub/internal/core/port"
	tel "todohub/internal/core/telemetry"
)

// TodoService is the one capability the HTTP and MCP surfaces share. It adds
// filter composition, statistics and change notification on top of a store.
type TodoService struct {
	store     port.TodoStore
	telemetry port.Telemetry

	mu        sync.RWMutex
	listeners []port.ChangeListener
}

func NewTodoService(store port.TodoStore, telemetry port.Telemetry) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{
		store:     store,
		telemetry: telemetry,
	}
}

var _ port.TodoService = (*TodoService)(nil)

// Subscribe registers a listener for successful creates, updates and deletes.
func (ts *TodoService) Subscribe(listener port.ChangeListener) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.listeners = append(ts.listeners, listener)
}

// List returns the todos that pass both the status filter and the query.
func (ts *TodoService) List(ctx context.Context, filter domain.TodoFilter) []domain.Todo {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "List", []attribute.KeyValue{
		attribute.String("filter.status", filter.Status.String()),
		attribute.String("filter.query", filter.Query),
	})
	defer span.End()

	startTime := time.Now()

	var todos []domain.Todo

	if filter.Query == "" {
		todos = ts.store.List(ctx, filter.Status)
	} else {
		todos = make([]domain.Todo, 0)

		for _, todo := range ts.store.Search(ctx, filter.Query) {
			if filter.Accepts(todo) {
				todos = append(todos, todo)
			}
		}
	}

	ts.telemetry.RecordServiceOperation(ctx, "List", time.Since(startTime), nil)

	return todos
}

func (ts *TodoService) Get(ctx context.Context, id int) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Get", []attribute.KeyValue{
		attribute.Int("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	todo, err := ts.store.Get(ctx, id)
	ts.telemetry.RecordServiceOperation(ctx, "Get", time.Since(startTime), err)

	return todo, err
}

func (ts *TodoService) Create(ctx context.Context, draft domain.TodoDraft) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Create", nil)
	defer span.End()

	startTime := time.Now()

	todo, err := ts.store.Create(ctx, draft)
	ts.telemetry.RecordServiceOperation(ctx, "Create", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.created", todo.ID, map[string]any{
		"status":   todo.Status.String(),
		"priority": todo.Priority,
	})
	ts.notify(ctx, port.ChangeCreated, todo.ID)

	return todo, nil
}

func (ts *TodoService) Update(ctx context.Context, id int, patch domain.TodoPatch) (domain.Todo, error) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Update", []attribute.KeyValue{
		attribute.Int("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	todo, err := ts.store.Update(ctx, id, patch)
	ts.telemetry.RecordServiceOperation(ctx, "Update", time.Since(startTime), err)

	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo.updated", todo.ID, map[string]any{
		"fields": patch.Fields(),
	})
	ts.notify(ctx, port.ChangeUpdated, todo.ID)

	return todo, nil
}

func (ts *TodoService) UpdateStatus(ctx context.Context, id int, status domain.TodoStatus) (domain.Todo, error) {
	return ts.Update(ctx, id, domain.TodoPatch{Status: domain.Some(status)})
}

func (ts *TodoService) Delete(ctx context.Context, id int) bool {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Delete", []attribute.KeyValue{
		attribute.Int("todo.id", id),
	})
	defer span.End()

	startTime := time.Now()

	deleted := ts.store.Delete(ctx, id)

	var err error
	if !deleted {
		err = domain.NotFoundError(id)
	}

	ts.telemetry.RecordServiceOperation(ctx, "Delete", time.Since(startTime), err)

	if deleted {
		ts.telemetry.RecordBusinessEvent(ctx, "todo.deleted", id, nil)
		ts.notify(ctx, port.ChangeDeleted, id)
	}

	return deleted
}

func (ts *TodoService) Search(ctx context.Context, query string) []domain.Todo {
	return ts.List(ctx, domain.TodoFilter{Query: query})
}

func (ts *TodoService) Stats(ctx context.Context) domain.TodoStats {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, "Stats", nil)
	defer span.End()

	startTime := time.Now()

	stats := domain.NewTodoStats(ts.store.List(ctx, ""))

	span.SetAttributes(
		attribute.Int("stats.total", stats.Total),
		attribute.Float64("stats.completion_rate", stats.CompletionRate),
	)
	ts.telemetry.RecordServiceOperation(ctx, "Stats", time.Since(startTime), nil)

	return stats
}

func (ts *TodoService) notify(ctx context.Context, kind port.ChangeKind, id int) {
	ts.mu.RLock()
	listeners := ts.listeners
	ts.mu.RUnlock()

	for _, listener := range listeners {
		listener.TodoChanged(ctx, kind, id)
	}
}
