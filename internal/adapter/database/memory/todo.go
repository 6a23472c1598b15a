package memory

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"todohub/internal/core/domain"
	"todohub/internal/core/port"
	tel "todohub/internal/core/telemetry"
	"todohub/internal/core/validation"
)

// TodoRepository keeps every todo in insertion order behind one lock. Ids come
// from a counter that only moves forward.
type TodoRepository struct {
	mu     sync.RWMutex
	todos  []domain.Todo
	nextID int

	now       func() time.Time
	validator port.Validator
	telemetry port.Telemetry
}

type Option func(*TodoRepository)

// WithClock replaces time.Now as the source of CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *TodoRepository) {
		r.now = now
	}
}

func WithValidator(v port.Validator) Option {
	return func(r *TodoRepository) {
		r.validator = v
	}
}

func WithTelemetry(t port.Telemetry) Option {
	return func(r *TodoRepository) {
		r.telemetry = t
	}
}

func NewTodoRepository(opts ...Option) *TodoRepository {
	r := &TodoRepository{
		todos:  []domain.Todo{},
		nextID: 1,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.validator == nil {
		r.validator = validation.New()
	}

	if r.telemetry == nil {
		r.telemetry = tel.NewNoOpProbe()
	}

	return r
}

var _ port.TodoStore = (*TodoRepository)(nil)

func (r *TodoRepository) List(ctx context.Context, status domain.TodoStatus) []domain.Todo {
	ctx, span := r.telemetry.StartStoreSpan(ctx, "List", []attribute.KeyValue{
		attribute.String("todo.status_filter", status.String()),
	})
	defer span.End()

	op := tel.StartOperation(r.telemetry, ctx, "List")

	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]domain.Todo, 0, len(r.todos))

	for _, todo := range r.todos {
		if status != "" && todo.Status != status {
			continue
		}

		todos = append(todos, todo.Clone())
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	op.End(nil)

	return todos
}

func (r *TodoRepository) Get(ctx context.Context, id int) (domain.Todo, error) {
	ctx, span := r.telemetry.StartStoreSpan(ctx, "Get", []attribute.KeyValue{
		attribute.Int("todo.id", id),
	})
	defer span.End()

	op := tel.StartOperation(r.telemetry, ctx, "Get")

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		err := domain.NotFoundError(id)
		op.End(err)

		return domain.Todo{}, err
	}

	op.End(nil)

	return r.todos[i].Clone(), nil
}

func (r *TodoRepository) Create(ctx context.Context, draft domain.TodoDraft) (domain.Todo, error) {
	ctx, span := r.telemetry.StartStoreSpan(ctx, "Create", []attribute.KeyValue{
		attribute.Int("todo.title_length", len(draft.Title)),
	})
	defer span.End()

	op := tel.StartOperation(r.telemetry, ctx, "Create")

	todo := draft.Todo()

	if err := r.validator.ValidateStruct(todo); err != nil {
		span.SetStatus(codes.Error, err.Error())
		op.End(err)

		return domain.Todo{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	todo.ID = r.nextID
	todo.CreatedAt = now
	todo.UpdatedAt = now

	r.nextID++
	r.todos = append(r.todos, todo)

	span.SetAttributes(attribute.Int("todo.id", todo.ID))
	op.End(nil)

	return todo.Clone(), nil
}

// Update writes the supplied fields of patch over the stored todo. The merged
// result is validated before anything is stored, so a failure leaves the todo
// untouched. UpdatedAt moves even when the patch is empty.
func (r *TodoRepository) Update(ctx context.Context, id int, patch domain.TodoPatch) (domain.Todo, error) {
	ctx, span := r.telemetry.StartStoreSpan(ctx, "Update", []attribute.KeyValue{
		attribute.Int("todo.id", id),
		attribute.StringSlice("todo.fields", patch.Fields()),
		attribute.Bool("todo.patch_empty", patch.IsEmpty()),
	})
	defer span.End()

	op := tel.StartOperation(r.telemetry, ctx, "Update")

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		err := domain.NotFoundError(id)
		op.End(err)

		return domain.Todo{}, err
	}

	candidate := patch.ApplyTo(r.todos[i])

	if err := r.validator.ValidateStruct(candidate); err != nil {
		span.SetStatus(codes.Error, err.Error())
		op.End(err)

		return domain.Todo{}, err
	}

	candidate.UpdatedAt = r.now()
	if candidate.UpdatedAt.Before(candidate.CreatedAt) {
		candidate.UpdatedAt = candidate.CreatedAt
	}

	r.todos[i] = candidate

	op.End(nil)

	return candidate.Clone(), nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int) bool {
	ctx, span := r.telemetry.StartStoreSpan(ctx, "Delete", []attribute.KeyValue{
		attribute.Int("todo.id", id),
	})
	defer span.End()

	op := tel.StartOperation(r.telemetry, ctx, "Delete")

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		span.SetAttributes(attribute.Bool("todo.deleted", false))
		op.End(nil)

		return false
	}

	r.todos = append(r.todos[:i], r.todos[i+1:]...)

	span.SetAttributes(attribute.Bool("todo.deleted", true))
	op.End(nil)

	return true
}

func (r *TodoRepository) Search(ctx context.Context, query string) []domain.Todo {
	ctx, span := r.telemetry.StartStoreSpan(ctx, "Search", []attribute.KeyValue{
		attribute.String("todo.query", query),
	})
	defer span.End()

	op := tel.StartOperation(r.telemetry, ctx, "Search")

	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]domain.Todo, 0)

	for _, todo := range r.todos {
		if todo.Matches(query) {
			todos = append(todos, todo.Clone())
		}
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	op.End(nil)

	return todos
}

func (r *TodoRepository) Len(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.todos)
}

// indexOf must be called with mu held.
func (r *TodoRepository) indexOf(id int) int {
	for i := range r.todos {
		if r.todos[i].ID == id {
			return i
		}
	}

	return -1
}
