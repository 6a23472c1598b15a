package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("todo not found")

// NotFoundError wraps ErrNotFound with the id that was looked up.
func NotFoundError(id int) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError enumerates every constraint an input broke.
type ValidationError struct {
	Violations []Violation
	cause      error
}

func NewValidationError(cause error, violations ...Violation) *ValidationError {
	return &ValidationError{Violations: violations, cause: cause}
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Violations))

	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError

	if errors.As(err, &validationErr) {
		return validationErr, true
	}

	return nil, false
}

// ToolInvocationError reports an unexpected failure while serving one tool call.
type ToolInvocationError struct {
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("Error executing tool '%s': %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Err
}
