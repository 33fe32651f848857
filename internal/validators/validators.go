// Package validators wraps go-playground/validator for catalog records and
// turns its errors into per-field messages for forms and JSON responses.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookoutlet/internal/utils"
)

var (
	instance *validator.Validate
	initOnce sync.Once
)

// FieldErrors maps a field's JSON name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Get returns the message for a field, or "".
func (fe FieldErrors) Get(field string) string {
	return fe[field]
}

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	initOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", SlugValidation)
		instance = v
	})
	return instance
}

// SlugValidation accepts blank values and [-a-zA-Z0-9_]+.
func SlugValidation(fl validator.FieldLevel) bool {
	return utils.IsValidSlug(fl.Field().String())
}

// Validate checks a struct and returns FieldErrors, or nil when valid.
func Validate(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	numeric := fe.Kind() >= reflect.Int && fe.Kind() <= reflect.Float64

	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if numeric {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		if numeric {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	default:
		return "Enter a valid value."
	}
}
