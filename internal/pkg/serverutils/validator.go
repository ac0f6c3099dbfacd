package serverutils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest runs the struct's validate tags.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// FieldErrors flattens validation errors into field -> message.
func FieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			out[field] = "is required"
		case "max":
			out[field] = fmt.Sprintf("must be at most %s", fe.Param())
		case "min":
			out[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "oneof":
			out[field] = "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			out[field] = "failed on " + fe.Tag()
		}
	}
	return out
}
