package http

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	xutil "celestial/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so errors match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := xutil.ParseClock(fl.Field().String())
		return err == nil
	})
	return v
}

// ReadAndValidateRequest binds, applies defaults and validates req. It
// returns nil when the request is acceptable.
func ReadAndValidateRequest(c echo.Context, req any) []ValidationError {
	if err := c.Bind(req); err != nil {
		return validatorDefaultRules(err, nil)
	}
	return ValidateStruct(c.Request().Context(), req)
}

// ValidateStruct applies default tags then validation tags to v.
func ValidateStruct(ctx context.Context, v any) []ValidationError {
	if err := defaults.Set(v); err != nil {
		return validatorDefaultRules(err, nil)
	}
	if err := validate.StructCtx(ctx, v); err != nil {
		return validatorDefaultRules(err, reflect.TypeOf(v))
	}
	return nil
}

func validatorDefaultRules(err error, root reflect.Type) []ValidationError {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errs := make([]ValidationError, 0, len(validationErrors))
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Code:    "ERR_" + strings.ToUpper(e.Tag()),
				Field:   fieldPath(e, root),
				Message: getErrorMessage(e),
				Params:  getErrorParams(e),
			})
		}
		return errs
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{
			Code:    "ERR_MALFORMED",
			Message: fmt.Sprintf("%v", he.Message),
		}}
	}

	return []ValidationError{{
		Code:    "ERR_UNKNOWN",
		Message: err.Error(),
	}}
}

// fieldPath turns a validator namespace into the json path of the field:
// "charts[1].latitude". The root type and untagged embedded structs are
// dropped; which segments those are comes from walking root along the Go
// struct namespace.
func fieldPath(fe validator.FieldError, root reflect.Type) string {
	parts := strings.Split(fe.Namespace(), ".")
	goParts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) <= 1 || len(parts) != len(goParts) {
		return fe.Field()
	}

	t := root
	kept := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		name, _, _ := strings.Cut(goParts[i], "[")
		f, ok := structField(t, name)
		if ok && f.Anonymous && f.Tag.Get("json") == "" {
			t = f.Type
			continue
		}
		if ok {
			t = f.Type
		} else {
			t = nil
		}
		kept = append(kept, parts[i])
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.Join(kept, ".")
}

// structField looks up a direct field of t, seeing through pointers and
// containers.
func structField(t reflect.Type, name string) (reflect.StructField, bool) {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
			continue
		case reflect.Struct:
			for i := 0; i < t.NumField(); i++ {
				if f := t.Field(i); f.Name == name {
					return f, true
				}
			}
		}
		return reflect.StructField{}, false
	}
	return reflect.StructField{}, false
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
	case "max":
		if fe.Type().Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "clock":
		return fmt.Sprintf("%s must be HH:MM or HH:MM:SS", field)
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, fe.Param())
	case "hexadecimal":
		return fmt.Sprintf("%s must be hexadecimal", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func getErrorParams(fe validator.FieldError) map[string]any {
	params := make(map[string]any)

	switch fe.Tag() {
	case "min", "gte":
		params["min"] = fe.Param()
	case "max", "lte":
		params["max"] = fe.Param()
	case "len":
		params["len"] = fe.Param()
	case "datetime":
		params["layout"] = fe.Param()
	}

	if len(params) == 0 {
		return nil
	}
	return params
}
