package port

import "todohub/internal/core/domain"

type Validator interface {
	ValidateStruct(s any) error
	FormatValidationErrors(err error) []domain.Violation
}
