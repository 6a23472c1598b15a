package helper

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"todohub/internal/core/domain"
	"todohub/internal/core/model/response"
	"todohub/internal/core/validation"

	"github.com/gin-gonic/gin"
)

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendMessage(c *gin.Context, statusCode int, message string, todo *domain.Todo) {
	body := response.TodoMessageResponse{Message: message}

	if todo != nil {
		todoResponse := response.NewTodoResponse(*todo)
		body.Todo = &todoResponse
	}

	c.JSON(statusCode, body)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	violations := validation.FormatValidationErrors(err)
	errors := make([]response.ValidationError, 0, len(violations))

	for _, v := range violations {
		errors = append(errors, response.ValidationError{
			Field:   v.Field,
			Message: v.Message,
		})
	}

	SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errors)
}

func SendFieldValidationError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", errors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, id int) {
	errors := []response.ValidationError{
		{
			Field:   "todo_id",
			Message: NotFoundMessage(id),
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

func NotFoundMessage(id int) string {
	return fmt.Sprintf("Todo with ID %d not found", id)
}

// SendServiceError maps an error returned by the todo service to its
// response: validation failures to 422, unknown ids to 404, the rest to 500.
func SendServiceError(c *gin.Context, err error, id int) {
	if _, ok := domain.AsValidationError(err); ok {
		SendValidationError(c, err)
		return
	}

	if domain.IsNotFound(err) {
		SendNotFoundError(c, id)
		return
	}

	SendInternalError(c, "Unexpected error")
}

// SendBindingError reports a body that could not be decoded. Unreadable or
// missing JSON is a 400; a value of the wrong type for a known field is a 422.
func SendBindingError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			SendBadRequestError(c, "body", "Request body must be a JSON object")
			return
		}

		SendFieldValidationError(c, field, fmt.Sprintf("%s must be of type %s", field, jsonType(typeErr.Type.String())))
		return
	}

	if errors.Is(err, io.EOF) {
		SendBadRequestError(c, "body", "Request body is required")
		return
	}

	SendBadRequestError(c, "body", "Invalid JSON body")
}

func jsonType(goType string) string {
	switch goType {
	case "int", "*int", "domain.Field[int]":
		return "integer"
	case "string", "*string", "domain.TodoStatus", "*domain.TodoStatus":
		return "string"
	default:
		return goType
	}
}
