package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookcatalog/internal/validation"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("digits", validateDigits)
	return v
}

func validateDigits(fl validator.FieldLevel) bool {
	_, err := validation.Digits(fl.FieldName(), fl.Field().String())
	return err == nil
}

// ValidateStruct checks the validate tags of a request body. Failures come
// back as validation.Errors so they share the response shape of the domain
// validators.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(validation.Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required", field)
		case "digits":
			message = fmt.Sprintf("The %s must be a number", field)
		case "min", "max":
			bound := "at least"
			if fe.Tag() == "max" {
				bound = "at most"
			}
			unit := "characters"
			if fe.Kind() == reflect.Slice {
				unit = "items"
			}
			message = fmt.Sprintf("The %s must have %s %s %s", field, bound, fe.Param(), unit)
		case "uuid":
			message = fmt.Sprintf("The %s must be a valid identifier", field)
		case "datetime":
			message = fmt.Sprintf("The %s must be a date formatted as %s", field, fe.Param())
		default:
			message = fmt.Sprintf("The %s is invalid", field)
		}
		out = append(out, validation.Failure{Field: field, Reason: message})
	}
	return out
}
