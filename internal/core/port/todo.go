package port

import (
	"context"

	"todohub/internal/core/domain"
)

// TodoStore owns the todo collection and the id counter.
type TodoStore interface {
	List(ctx context.Context, status domain.TodoStatus) []domain.Todo
	Get(ctx context.Context, id int) (domain.Todo, error)
	Create(ctx context.Context, draft domain.TodoDraft) (domain.Todo, error)
	Update(ctx context.Context, id int, patch domain.TodoPatch) (domain.Todo, error)
	Delete(ctx context.Context, id int) bool
	Search(ctx context.Context, query string) []domain.Todo
	Len(ctx context.Context) int
}

// TodoService is the single capability both front ends are built on.
type TodoService interface {
	List(ctx context.Context, filter domain.TodoFilter) []domain.Todo
	Get(ctx context.Context, id int) (domain.Todo, error)
	Create(ctx context.Context, draft domain.TodoDraft) (domain.Todo, error)
	Update(ctx context.Context, id int, patch domain.TodoPatch) (domain.Todo, error)
	UpdateStatus(ctx context.Context, id int, status domain.TodoStatus) (domain.Todo, error)
	Delete(ctx context.Context, id int) bool
	Search(ctx context.Context, query string) []domain.Todo
	Stats(ctx context.Context) domain.TodoStats
}

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeListener is told about every successful mutation.
type ChangeListener interface {
	TodoChanged(ctx context.Context, kind ChangeKind, id int)
}

type ChangeListenerFunc func(ctx context.Context, kind ChangeKind, id int)

func (f ChangeListenerFunc) TodoChanged(ctx context.Context, kind ChangeKind, id int) {
	f(ctx, kind, id)
}
