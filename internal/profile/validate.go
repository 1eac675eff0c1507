package profile

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Password form fields, keyed the way the settings form names them.
const (
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 8

// ValidationError reports per-field problems with a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "profile: invalid input: " + strings.Join(parts, "; ")
}

// Field returns the message for one field, or "".
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

// PasswordChange is the password form.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=NewPassword"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return slices.Contains(Departments, fl.Field().String())
	})
	return v
}

// ValidatePasswordChange checks the password form. Every failing field is
// reported; a nil result means the change may proceed.
func ValidatePasswordChange(req PasswordChange) *ValidationError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	return toValidationError(err, passwordMessage)
}

// Validate checks a profile before it is saved.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	return toValidationError(err, profileMessage)
}

func toValidationError(err error, message func(validator.FieldError) string) *ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: map[string]string{"": err.Error()}}
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func passwordMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case FieldCurrentPassword:
		return "Current password is required"
	case FieldNewPassword:
		if fe.Tag() == "min" {
			return fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
		}
		return "New password is required"
	case FieldConfirmPassword:
		return "Passwords do not match"
	}
	return fe.Error()
}

func profileMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "department":
		return "must be one of " + strings.Join(Departments, ", ")
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
