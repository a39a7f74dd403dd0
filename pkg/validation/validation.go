// Package validation holds the field error types shared by the domain
// validators and the translation from validator/v10 errors to them.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, err := range v {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(parts, "; "))
}

// Details renders the errors as the details map of an API error.
func (v ValidationErrors) Details() map[string]any {
	fields := make(map[string]any, len(v))
	for _, err := range v {
		fields[err.Field] = err.Message
	}
	return map[string]any{"fields": fields}
}

// Struct validates s and converts field failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

// messages maps a validator tag to a format taking the field and the tag
// parameter. Tags not listed fall back to the validator's own text.
var messages = map[string]string{
	"required": "%s is required",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
	"gt":       "%s must be greater than %s",
	"oneof":    "%s must be one of: %s",
	"unique":   "%s must not contain duplicates",
	"mongodb":  "%s must be a valid MongoDB ObjectID",
	"e164":     "%s must be in E.164 format (e.g., +16502530000)",
	"url":      "%s must be a valid URL",
	"email":    "%s must be a valid email address",
	"datetime": "%s must be a date in the form %s",
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		out = append(out, ValidationError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "extra_code" {
		return fmt.Sprintf("%v is not a known extra", fe.Value())
	}
	format, ok := messages[fe.Tag()]
	if !ok {
		return fe.Error()
	}
	if strings.Count(format, "%s") == 1 {
		return fmt.Sprintf(format, fe.Field())
	}
	return fmt.Sprintf(format, fe.Field(), fe.Param())
}

// AsValidationErrors unwraps err into field errors when it carries them.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
