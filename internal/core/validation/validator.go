package validation

import (
	"errors"
	"reflect"

	"todohub/internal/core/domain"
	"todohub/internal/core/port"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())
	Validator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return getFieldName(fld.Name)
	})

	english := en.New()
	uni := ut.New(english, english)

	var found bool
	Translator, found = uni.GetTranslator("en")

	if !found {
		panic("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(Validator, Translator); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func addCustomTranslations() {
	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", fe.Field())
		return t
	})

	Validator.RegisterTranslation("oneof", Translator, func(ut ut.Translator) error {
		return ut.Add("oneof", "{0} must be one of: {1}", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("oneof", fe.Field(), fe.Param())
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"ID":          "id",
		"Title":       "title",
		"Description": "description",
		"Status":      "status",
		"Priority":    "priority",
		"CreatedAt":   "created_at",
		"UpdatedAt":   "updated_at",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

// Struct validates s and reports every broken constraint as a
// *domain.ValidationError.
func Struct(s any) error {
	err := Validator.Struct(s)

	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors

	if !errors.As(err, &fieldErrors) {
		return err
	}

	return domain.NewValidationError(err, FormatValidationErrors(err)...)
}

func FormatValidationErrors(err error) []domain.Violation {
	var violations []domain.Violation

	if validationErr, ok := domain.AsValidationError(err); ok && len(validationErr.Violations) > 0 {
		return validationErr.Violations
	}

	var fieldErrors validator.ValidationErrors

	if errors.As(err, &fieldErrors) {
		for _, fieldError := range fieldErrors {
			violations = append(violations, domain.Violation{
				Field:   fieldError.Field(),
				Rule:    fieldError.Tag(),
				Param:   fieldError.Param(),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return violations
}

type structValidator struct{}

func New() port.Validator {
	return structValidator{}
}

func (structValidator) ValidateStruct(s any) error {
	return Struct(s)
}

func (structValidator) FormatValidationErrors(err error) []domain.Violation {
	return FormatValidationErrors(err)
}
