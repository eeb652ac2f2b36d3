package utils

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/example/storefront/internal/models"
)

// ValidationError carries per-field messages for user-correctable input
// problems. It is advisory UX validation; the backend remains the authority.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodePattern = regexp.MustCompile(`^\d{6}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		_ = validate.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
			return pincodePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("region", func(fl validator.FieldLevel) bool {
			return models.ValidRegion(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct runs tag validation and converts failures into a
// field-tagged *ValidationError.
func ValidateStruct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fieldName(fe)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	// StructNamespace looks like "AddressFields.FirstName"; keep the leaf.
	name := fe.StructNamespace()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "inphone":
		return "must be a 10 digit number starting with 6-9"
	case "pincode":
		return "must be a 6 digit pincode"
	case "region":
		return "is not a shippable state"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
