package validation

import (
	"regexp"
	"strings"

	"usersapi/internal/core/model/response"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// emailPattern matches something@something.something with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	Validator  *validator.Validate
	Translator ut.Translator
)

func init() {
	Validator = validator.New(validator.WithRequiredStructEnabled())

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

	if err := Validator.RegisterValidation("basic_email", validateBasicEmail); err != nil {
		panic(err)
	}

	addCustomTranslations()
}

func validateBasicEmail(fl validator.FieldLevel) bool {
	return IsBasicEmail(fl.Field().String())
}

func IsBasicEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func addCustomTranslations() {
	Validator.RegisterTranslation("basic_email", Translator, func(ut ut.Translator) error {
		return ut.Add("basic_email", "{0} must be a valid email address", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("basic_email", getFieldName(fe.Field()))
		return t
	})

	Validator.RegisterTranslation("required", Translator, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", getFieldName(fe.Field()))
		return t
	})
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":  "Name",
		"Email": "Email",
	}

	if name, exists := fieldNames[field]; exists {
		return name
	}

	return field
}

func FormatValidationErrors(err error) []response.ValidationError {
	var errors []response.ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errors = append(errors, response.ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Message: fieldError.Translate(Translator),
			})
		}
	}

	return errors
}

// Violation is the most significant rule a request broke, in the order the
// API reports them: missing fields first, then the email shape, then the name.
type Violation int

const (
	NoViolation Violation = iota
	MissingField
	InvalidEmail
	InvalidName
	NameTooLong
)

var violationMessages = map[Violation]string{
	MissingField: "Name and email are required",
	InvalidEmail: "Please provide a valid email address",
	InvalidName:  "Name must be at least 2 characters long",
	NameTooLong:  "Name must be at most 255 characters long",
}

func ViolationMessage(v Violation) string {
	if message, ok := violationMessages[v]; ok {
		return message
	}

	return "Invalid request body"
}

func FirstViolation(err error) Violation {
	validationErrors, ok := err.(validator.ValidationErrors)

	if !ok || len(validationErrors) == 0 {
		return NoViolation
	}

	worst := NoViolation

	for _, fieldError := range validationErrors {
		var v Violation

		switch {
		case fieldError.Tag() == "required":
			v = MissingField
		case fieldError.Field() == "Email":
			v = InvalidEmail
		case fieldError.Tag() == "max":
			v = NameTooLong
		default:
			v = InvalidName
		}

		if worst == NoViolation || v < worst {
			worst = v
		}
	}

	return worst
}
