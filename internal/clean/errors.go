package clean

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nao1215/tabclean/internal/frame"
)

// ErrInvalidInput is matched by every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports a configuration value that is out of range or of
// the wrong type. It is always returned before any table is touched.
type InvalidInputError struct {
	// Field is the option name, e.g. "drop_threshold_cols".
	Field string

	// Value is the rejected value.
	Value any

	// Reason describes the constraint that was violated.
	Reason string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: '%s' = %v %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidInput) succeed.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// validate checks option structs against their `validate` tags.
// Field names in errors come from the `json` tag.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateOptions runs struct validation and converts the first failure into
// an *InvalidInputError.
func ValidateOptions(opts any) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	reason := fmt.Sprintf("violates %q", fe.Tag())
	switch fe.Tag() {
	case "gte":
		reason = fmt.Sprintf("but should be greater than or equal to %s", fe.Param())
	case "lte":
		reason = fmt.Sprintf("but should be less than or equal to %s", fe.Param())
	case "gt":
		reason = fmt.Sprintf("but should be greater than %s", fe.Param())
	}
	return &InvalidInputError{Field: fe.Field(), Value: fe.Value(), Reason: reason}
}

// ValidateRange fails unless lower <= value <= upper. NaN is always rejected.
func ValidateRange(value float64, desc string, lower, upper float64) error {
	if math.IsNaN(value) || value < lower || value > upper {
		return &InvalidInputError{
			Field:  desc,
			Value:  value,
			Reason: fmt.Sprintf("but should be within the range %v <= '%s' <= %v", lower, desc, upper),
		}
	}
	return nil
}

// requireTable rejects a nil table.
func requireTable(t *frame.Table) error {
	if t == nil {
		return &InvalidInputError{Field: "data", Value: nil, Reason: "but should be a two-dimensional table"}
	}
	return nil
}
