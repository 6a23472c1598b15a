package factory

import (
	fab "github.com/Goldziher/fabricator"

	"todohub/internal/core/domain"
)

// TodoAttributes is the flat shape fabricated for a todo. Empty Description
// and Status, and a zero Priority, mean "not supplied" in the resulting draft.
type TodoAttributes struct {
	Title       string
	Description string
	Status      string
	Priority    int
}

var todoDefaults = map[string]any{
	"Title":       "Write the weekly report",
	"Description": "",
	"Status":      "",
	"Priority":    0,
}

func NewTodo[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	overrides := make(map[string]any, len(todoDefaults))

	for key, value := range todoDefaults {
		overrides[key] = value
	}

	for _, data := range customData {
		for key, value := range data {
			overrides[key] = value
		}
	}

	return instance.Build(overrides)
}

// NewTodoDraft fabricates a draft that passes validation unless customData
// says otherwise.
func NewTodoDraft(customData ...map[string]any) domain.TodoDraft {
	attrs := NewTodo[TodoAttributes](customData...)

	draft := domain.TodoDraft{Title: attrs.Title}

	if attrs.Description != "" {
		description := attrs.Description
		draft.Description = &description
	}

	if attrs.Status != "" {
		status := domain.TodoStatus(attrs.Status)
		draft.Status = &status
	}

	if attrs.Priority != 0 {
		priority := attrs.Priority
		draft.Priority = &priority
	}

	return draft
}
