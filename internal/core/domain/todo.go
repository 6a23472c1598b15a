package domain

import (
	"fmt"
	"strings"
	"time"
)

type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
)

const (
	DefaultPriority = 1
	MinPriority     = 1
	MaxPriority     = 5

	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// TodoStatuses lists every accepted status in display order.
func TodoStatuses() []TodoStatus {
	return []TodoStatus{TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted}
}

func (s TodoStatus) String() string {
	return string(s)
}

func (s TodoStatus) IsValid() bool {
	switch s {
	case TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted:
		return true
	default:
		return false
	}
}

func ParseTodoStatus(status string) (TodoStatus, error) {
	s := TodoStatus(status)

	if !s.IsValid() {
		return "", fmt.Errorf("invalid status: %q", status)
	}

	return s, nil
}

type Todo struct {
	ID          int
	Title       string     `validate:"required,min=1,max=200"`
	Description *string    `validate:"omitempty,max=1000"`
	Status      TodoStatus `validate:"required,oneof=pending in_progress completed"`
	Priority    int        `validate:"min=1,max=5"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy that shares no memory with t.
func (t Todo) Clone() Todo {
	if t.Description != nil {
		description := *t.Description
		t.Description = &description
	}

	return t
}

func (t Todo) DescriptionOrFallback(fallback string) string {
	if t.Description == nil || *t.Description == "" {
		return fallback
	}

	return *t.Description
}

// Matches reports whether query is a case-insensitive substring of the title
// or of the description. An empty query matches every todo.
func (t Todo) Matches(query string) bool {
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}

	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

// TodoDraft is the input of a create. Nil optional fields take their defaults;
// a supplied zero value is kept and validated.
type TodoDraft struct {
	Title       string
	Description *string
	Status      *TodoStatus
	Priority    *int
}

// Todo builds the unvalidated item a draft describes, defaults applied.
func (d TodoDraft) Todo() Todo {
	todo := Todo{
		Title:    d.Title,
		Status:   TodoStatusPending,
		Priority: DefaultPriority,
	}

	if d.Description != nil {
		description := *d.Description
		todo.Description = &description
	}

	if d.Status != nil {
		todo.Status = *d.Status
	}

	if d.Priority != nil {
		todo.Priority = *d.Priority
	}

	return todo
}

// TodoPatch is the input of an update. Only fields that are Set are written.
// Description set to nil clears the stored description.
type TodoPatch struct {
	Title       Field[string]     `json:"title"`
	Description Field[*string]    `json:"description"`
	Status      Field[TodoStatus] `json:"status"`
	Priority    Field[int]        `json:"priority"`
}

func (p TodoPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.Priority.Set
}

// ApplyTo returns todo with every supplied field replaced. ID and timestamps
// are left as they are.
func (p TodoPatch) ApplyTo(todo Todo) Todo {
	updated := todo.Clone()

	if p.Title.Set {
		updated.Title = p.Title.Value
	}

	if p.Description.Set {
		updated.Description = nil

		if p.Description.Value != nil {
			description := *p.Description.Value
			updated.Description = &description
		}
	}

	if p.Status.Set {
		updated.Status = p.Status.Value
	}

	if p.Priority.Set {
		updated.Priority = p.Priority.Value
	}

	return updated
}

// Fields lists the json names of the supplied fields.
func (p TodoPatch) Fields() []string {
	fields := make([]string, 0, 4)

	if p.Title.Set {
		fields = append(fields, "title")
	}

	if p.Description.Set {
		fields = append(fields, "description")
	}

	if p.Status.Set {
		fields = append(fields, "status")
	}

	if p.Priority.Set {
		fields = append(fields, "priority")
	}

	return fields
}

// TodoFilter combines a status filter and a search query. Both are optional
// and an item must pass both.
type TodoFilter struct {
	Status TodoStatus
	Query  string
}

func (f TodoFilter) Accepts(todo Todo) bool {
	if f.Status != "" && todo.Status != f.Status {
		return false
	}

	return f.Query == "" || todo.Matches(f.Query)
}
