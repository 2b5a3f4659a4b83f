package validation

import (
	"strings"
	"testing"

	"usersapi/internal/core/model/request"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestIsBasicEmail(t *testing.T) {
	valid := []string{"a@x.com", "john.doe+tag@mail.example.org", "A@X.CO"}
	invalid := []string{"", "plain", "a@x", "@x.com", "a@.com.", "a b@x.com", "a@@x.com", " a@x.com"}

	for _, email := range valid {
		assert.True(t, IsBasicEmail(email), email)
	}

	for _, email := range invalid {
		assert.False(t, IsBasicEmail(email), email)
	}
}

func TestFirstViolation(t *testing.T) {
	RegisterTestingT(t)

	cases := []struct {
		name string
		req  request.UserRequest
		want Violation
	}{
		{"valid", request.UserRequest{Name: "Jo", Email: "jo@example.com"}, NoViolation},
		{"missing name", request.UserRequest{Email: "jo@example.com"}, MissingField},
		{"missing email", request.UserRequest{Name: "Jo"}, MissingField},
		{"missing email beats short name", request.UserRequest{Name: "J"}, MissingField},
		{"bad email", request.UserRequest{Name: "Jo", Email: "nope"}, InvalidEmail},
		{"bad email beats short name", request.UserRequest{Name: "J", Email: "nope"}, InvalidEmail},
		{"short name", request.UserRequest{Name: "J", Email: "jo@example.com"}, InvalidName},
		{"long name", request.UserRequest{Name: strings.Repeat("a", 256), Email: "jo@example.com"}, NameTooLong},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validator.Struct(tc.req)
			Expect(FirstViolation(err)).To(Equal(tc.want))
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	RegisterTestingT(t)

	err := Validator.Struct(request.UserRequest{Name: "J", Email: "nope"})
	errors := FormatValidationErrors(err)

	Expect(errors).To(HaveLen(2))
	Expect(errors[0].Field).To(Equal("name"))
	Expect(errors[1].Field).To(Equal("email"))
	Expect(errors[1].Message).To(Equal("Email must be a valid email address"))
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	assert.Empty(t, FormatValidationErrors(assert.AnError))
}

func TestViolationMessage(t *testing.T) {
	assert.Equal(t, "Name and email are required", ViolationMessage(MissingField))
	assert.Equal(t, "Please provide a valid email address", ViolationMessage(InvalidEmail))
	assert.Equal(t, "Name must be at least 2 characters long", ViolationMessage(InvalidName))
	assert.Equal(t, "Invalid request body", ViolationMessage(NoViolation))
}
