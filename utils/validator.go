package utils

import (
	"errors"
	"strings"
	"unicode"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

const passwordSpecials = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("mailformat", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
	return v
}

// IsStrongPassword requires at least 8 characters with a lowercase letter,
// an uppercase letter and a special character.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && special
}

// ValidateStruct runs struct tag validation and returns a ValidationError
// listing every failing field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError(err.Error())
	}

	var messages []string
	for _, err := range verrs {
		field := strings.ToLower(err.Field())
		param := err.Param()

		switch err.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "min":
			messages = append(messages, field+" must be at least "+param+" characters")
		case "max":
			messages = append(messages, field+" must be at most "+param+" characters")
		case "email", "mailformat":
			messages = append(messages, "Please enter a valid email address.")
		case "len":
			messages = append(messages, field+" must be exactly "+param+" characters")
		case "oneof":
			messages = append(messages, field+" must be one of: "+param)
		case "strongpassword":
			messages = append(messages, "Password requirements are not met.")
		case "gte", "gt":
			messages = append(messages, field+" must be greater than or equal to "+param)
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return NewValidationError(strings.Join(messages, ", "))
}
