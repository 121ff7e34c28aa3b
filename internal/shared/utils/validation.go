package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ptuchik/billing/internal/shared/errors"
)

var (
	validate *validator.Validate

	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	aliasRegex    = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,99}$`)
)

func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("alias", func(fl validator.FieldLevel) bool {
		return aliasRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		return IsDecimalString(fl.Field().String())
	})
}

var decimalRegex = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// IsDecimalString reports whether s is a non-negative amount with at most two decimals.
func IsDecimalString(s string) bool {
	return decimalRegex.MatchString(s)
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("Validation failed", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "currency":
		return fmt.Sprintf("%s must be a 3-letter ISO currency code", field)
	case "alias":
		return fmt.Sprintf("%s must be a lowercase alias", field)
	case "decimal":
		return fmt.Sprintf("%s must be an amount with at most two decimals", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
