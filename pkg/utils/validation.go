package utils

import (
	"fmt"
	"reflect"
	"strings"

	appErrors "moodi-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags. Failures come
// back as a VALIDATION AppError whose details map each field to a message.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateVar validates a single value against a tag, reporting it as field
func ValidateVar(field string, value interface{}, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return FieldError(field, formatFieldError(field, fieldErrs[0]))
		}
		return FieldError(field, fmt.Sprintf("%s is invalid", field))
	}
	return nil
}

// FieldError builds a VALIDATION AppError for a single field
func FieldError(field, message string) *appErrors.AppError {
	return appErrors.NewValidationError(message).WithDetails(map[string]interface{}{field: message})
}

// MergeValidation combines several validation errors into one. Non-validation
// errors are returned unchanged.
func MergeValidation(errs ...error) error {
	var merged *appErrors.AppError
	var messages []string
	for _, err := range errs {
		if err == nil {
			continue
		}
		appErr := appErrors.GetAppError(err)
		if appErr == nil || appErr.Type != appErrors.ErrorTypeValidation {
			return err
		}
		if merged == nil {
			merged = appErrors.NewValidationError("").WithDetails(map[string]interface{}{})
		}
		for k, v := range appErr.Details {
			merged.Details[k] = v
		}
		messages = append(messages, appErr.Message)
	}
	if merged == nil {
		return nil
	}
	merged.Message = strings.Join(messages, "; ")
	return merged
}

func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return appErrors.NewValidationError(err.Error())
	}

	details := make(map[string]interface{}, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := fieldPath(e)
		msg := formatFieldError(field, e)
		details[field] = msg
		messages = append(messages, msg)
	}
	return appErrors.NewValidationError(strings.Join(messages, "; ")).WithDetails(details)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatFieldError(field string, e validator.FieldError) string {
	numeric := false
	switch e.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
