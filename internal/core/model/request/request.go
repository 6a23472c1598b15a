package request

import "todohub/internal/core/domain"

// TodoCreateRequest is the body of POST /todos. A missing title decodes to ""
// and is then rejected as required.
type TodoCreateRequest struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	Status      *domain.TodoStatus `json:"status"`
	Priority    *int               `json:"priority"`
}

func (r TodoCreateRequest) ToDraft() domain.TodoDraft {
	return domain.TodoDraft{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
}

// TodoUpdateRequest is the body of PUT /todos/:id. Only keys present in the
// body are applied; "description": null clears the description.
type TodoUpdateRequest = domain.TodoPatch

type TodoStatusRequest struct {
	Status *domain.TodoStatus `json:"status" validate:"required"`
}

type TodoListQuery struct {
	Status string `form:"status"`
	Search string `form:"search"`
}
