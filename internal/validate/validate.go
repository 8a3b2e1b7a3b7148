// internal/validate/validate.go
//
// Struct-tag validation for request payloads and service inputs.
//
// Context
// -------
// One shared go-playground/validator instance, configured to report JSON
// field names, so a failing `PartySize int \`json:"party_size"\`` surfaces
// to the client as field "party_size".  The first failing field wins and
// is returned as an apperr validation error.
//
// Notes
// -----
// • validator caches struct metadata; a single instance is safe for
//   concurrent use.
// • Oxford commas, two spaces after periods.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/guestlist/internal/apperr"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Struct validates s and returns nil or an *apperr.Error naming the first
// offending field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal(fmt.Errorf("validate: %w", err))
	}
	fe := verrs[0]
	return apperr.Validation(fieldPath(fe), message(fe))
}

// fieldPath drops the top-level struct name: "CreateGuest.name" → "name",
// "Submit.attendees[0].name" → "attendees[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i != -1 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match the format %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
