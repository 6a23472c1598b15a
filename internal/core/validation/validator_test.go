package validation_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"todohub/internal/core/domain"
	"todohub/internal/core/validation"
)

func TestStruct_ValidTodo(t *testing.T) {
	RegisterTestingT(t)

	err := validation.Struct(domain.TodoDraft{Title: "Ok"}.Todo())

	Expect(err).To(BeNil())
}

func TestStruct_EnumeratesEveryViolation(t *testing.T) {
	RegisterTestingT(t)

	description := strings.Repeat("d", domain.MaxDescriptionLength+1)

	err := validation.Struct(domain.Todo{
		Title:       strings.Repeat("t", domain.MaxTitleLength+1),
		Description: &description,
		Status:      "archived",
		Priority:    0,
	})

	validationErr, ok := domain.AsValidationError(err)
	Expect(ok).To(BeTrue())

	messages := map[string]string{}
	for _, v := range validationErr.Violations {
		messages[v.Field] = v.Message
	}

	Expect(messages).To(HaveLen(4))
	Expect(messages).To(HaveKeyWithValue("status", "status must be one of: pending in_progress completed"))
	Expect(messages["title"]).To(ContainSubstring("title"))
	Expect(messages["priority"]).To(ContainSubstring("priority"))
}

func TestStruct_RequiredTitle(t *testing.T) {
	RegisterTestingT(t)

	err := validation.New().ValidateStruct(domain.TodoDraft{}.Todo())

	violations := validation.FormatValidationErrors(err)

	Expect(violations).To(HaveLen(1))
	Expect(violations[0].Field).To(Equal("title"))
	Expect(violations[0].Rule).To(Equal("required"))
	Expect(violations[0].Message).To(Equal("title is required"))
}
