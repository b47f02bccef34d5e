// Package validation holds the shared validator used for request schemas.
package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// FieldError describes a single failed constraint.
type FieldError struct {
	// Field is the struct field name, e.g. "MinutesToComplete".
	Field string
	// Tag is the failed validation tag, e.g. "required" or "min".
	Tag string
	// Param is the tag parameter, e.g. "50" for min=50.
	Param string
}

// Struct validates v and flattens any failures into FieldErrors.
// A nil slice means v is valid.
func Struct(v any) ([]FieldError, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field: fe.StructField(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return fields, nil
}
