// Package validation builds the struct validator shared by every domain
// validator and turns its errors into field/message pairs.
package validation

import (
	"errors"
	"fmt"
	"slotkeeper/pkg/daytime"
	apperrors "slotkeeper/pkg/errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TagHHMM      = "hhmm"
	TagCivilDate = "civil_date"
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
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func Field(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// New returns a validator with the scheduling tags registered.
func New() (*validator.Validate, error) {
	v := validator.New()

	if err := v.RegisterValidation(TagHHMM, validateHHMM); err != nil {
		return nil, fmt.Errorf("failed to register %q validator: %w", TagHHMM, err)
	}
	if err := v.RegisterValidation(TagCivilDate, validateCivilDate); err != nil {
		return nil, fmt.Errorf("failed to register %q validator: %w", TagCivilDate, err)
	}
	return v, nil
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := daytime.ParseMinute(fl.Field().String())
	return err == nil
}

func validateCivilDate(fl validator.FieldLevel) bool {
	return daytime.ValidDate(fl.Field().String())
}

// Struct validates s and translates validator errors.
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

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA time zone", err.Field())
		case TagHHMM:
			message = fmt.Sprintf("%s must be a time in HH:MM format", err.Field())
		case TagCivilDate:
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

// AppError wraps a validation failure into the API error shape.
func AppError(message string, err error) *apperrors.AppError {
	var fieldErrs ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.Validation(message, map[string]any{"errors": fieldErrs})
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
