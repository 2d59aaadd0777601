package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tuiter/tuiter-api/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
// Failures surface as domain validation errors carrying the offending field.
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in messages follow the json tag, matching what the client sent.
func NewValidator() *echoValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.InternalError(err)
	}

	first := ve[0]
	field := fieldName(first)

	return domain.ValidationError(
		fieldError(first, field),
		"Fix the field and try again.",
	).WithLocation("API:VALIDATOR:STRUCT").WithKey(field)
}

func fieldName(fe validator.FieldError) string {
	if fe.Field() != "" {
		return fe.Field()
	}
	return strings.ToLower(fe.StructField())
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError, field string) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf(`The field "%s" is required.`, field)
	case "email":
		return fmt.Sprintf(`The field "%s" must be a valid email.`, field)
	case "min":
		return fmt.Sprintf(`The field "%s" must have at least %s characters.`, field, fe.Param())
	case "max":
		return fmt.Sprintf(`The field "%s" must have at most %s characters.`, field, fe.Param())
	case "oneof":
		return fmt.Sprintf(`The field "%s" must be one of: %s.`, field, fe.Param())
	case "uuid":
		return fmt.Sprintf(`The field "%s" must be a valid id.`, field)
	default:
		return fmt.Sprintf(`The field "%s" failed validation (%s).`, field, fe.Tag())
	}
}
