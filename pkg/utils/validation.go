package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

var validate = newValidator()

// newValidator reports fields by their json name so messages match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct checks validate tags and returns a ValidationError listing
// every failing field. Details carry one message per field under "fields".
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		fields := make(map[string]interface{}, len(validationErrors))
		for _, e := range validationErrors {
			msg := formatFieldError(e)
			msgs = append(msgs, msg)
			fields[e.Field()] = msg
		}
		return apperrors.NewValidationError(strings.Join(msgs, "; ")).
			WithCode("INVALID_FIELDS").
			WithDetails(map[string]interface{}{"fields": fields})
	}
	return apperrors.NewValidationError(err.Error())
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, e.Param())
	case "dive":
		return fmt.Sprintf("%s contains invalid values", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
