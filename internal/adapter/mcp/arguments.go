package mcp

import (
	"fmt"
	"math"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"todohub/internal/core/domain"
)

// ArgumentError lists every argument of one call that had the wrong shape.
// It is raised before the service is reached.
type ArgumentError struct {
	Problems []string
}

func (e *ArgumentError) Error() string {
	return "Invalid arguments: " + strings.Join(e.Problems, "; ")
}

// arguments decodes the raw argument object of a call strictly. Problems are
// collected so one result can report all of them.
type arguments struct {
	raw      map[string]any
	problems []string
}

func newArguments(req mcpgo.CallToolRequest) (*arguments, error) {
	if req.Params.Arguments == nil {
		return &arguments{raw: map[string]any{}}, nil
	}

	raw, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be an object, got %T", req.Params.Arguments)
	}

	return &arguments{raw: raw}, nil
}

func (a *arguments) fail(format string, args ...any) {
	a.problems = append(a.problems, fmt.Sprintf(format, args...))
}

func (a *arguments) err() error {
	if len(a.problems) == 0 {
		return nil
	}

	return &ArgumentError{Problems: a.problems}
}

func (a *arguments) has(name string) bool {
	value, present := a.raw[name]

	return present && value != nil
}

func (a *arguments) requiredInt(name string) int {
	if !a.has(name) {
		a.fail("%s is required", name)
		return 0
	}

	return a.optionalInt(name).Value
}

func (a *arguments) requiredString(name string) string {
	if !a.has(name) {
		a.fail("%s is required", name)
		return ""
	}

	return a.optionalString(name).Value
}

// optionalInt accepts JSON numbers with no fractional part that fit in an int.
// A null value is treated as absent.
func (a *arguments) optionalInt(name string) domain.Field[int] {
	if !a.has(name) {
		return domain.Field[int]{}
	}

	switch v := a.raw[name].(type) {
	case int:
		return domain.Some(v)
	case int64:
		if v >= math.MinInt && v <= math.MaxInt {
			return domain.Some(int(v))
		}
	case float64:
		// Whole numbers outside the int range would wrap on conversion.
		if v == math.Trunc(v) && v >= math.MinInt && v < math.MaxInt+1 {
			return domain.Some(int(v))
		}
	}

	a.fail("%s must be an integer", name)

	return domain.Field[int]{}
}

func (a *arguments) optionalString(name string) domain.Field[string] {
	if !a.has(name) {
		return domain.Field[string]{}
	}

	s, ok := a.raw[name].(string)
	if !ok {
		a.fail("%s must be a string", name)
		return domain.Field[string]{}
	}

	return domain.Some(s)
}

// nullableString keeps an explicit null as a present nil, which clears the
// field in an update.
func (a *arguments) nullableString(name string) domain.Field[*string] {
	value, present := a.raw[name]
	if !present {
		return domain.Field[*string]{}
	}

	if value == nil {
		return domain.Some[*string](nil)
	}

	s, ok := value.(string)
	if !ok {
		a.fail("%s must be a string", name)
		return domain.Field[*string]{}
	}

	return domain.Some(&s)
}

func (a *arguments) optionalStatus(name string) domain.Field[domain.TodoStatus] {
	value, ok := a.optionalString(name).Get()
	if !ok {
		return domain.Field[domain.TodoStatus]{}
	}

	return domain.Some(domain.TodoStatus(value))
}

func pointer[T any](f domain.Field[T]) *T {
	if !f.Set {
		return nil
	}

	value := f.Value

	return &value
}
