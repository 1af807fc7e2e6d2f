package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// draftValidator checks `validate` tags before anything is sent.
	draftValidator = newValidator("validate")
	// wireValidator checks `wire` tags on decoded server responses.
	wireValidator = newValidator("wire")
)

func newValidator(tag string) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(tag)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		d, ok := f.Interface().(Date)
		if !ok || d.IsZero() {
			return nil
		}
		return d.Time
	}, Date{})
	return v
}

// Validate runs the local field checks on a draft.
func Validate(v any) error {
	return asValidationError(draftValidator.Struct(v))
}

// CheckWire verifies a decoded record carries what the client relies on.
func CheckWire(v any) error {
	return asValidationError(wireValidator.Struct(v))
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be at least " + fe.Param()
	}
	return "failed " + fe.Tag()
}
