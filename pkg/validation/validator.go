package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator checks request structs tagged with `validate` and reports every
// offending field at once, keyed by its JSON name.
type Validator struct {
	v *validator.Validate
}

// New configures a validator.
// - Uses JSON tag names in errors.
// - Registers notblank (rejects empty and whitespace-only strings).
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{v: v}
}

// Validate returns nil when s satisfies its tags, otherwise a field -> message
// map with one message per failing field.
func (val *Validator) Validate(s any) map[string]string {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	return ToDetails(err)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error bodies.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads, including empty and truncated bodies
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fe.Field()
			// validator reports at most one tag per field; keep the first anyway
			if _, seen := out[field]; seen {
				continue
			}
			out[field] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	label := Label(fe.Field())
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	// ===== PRESENCE =====
	case "required", "notblank":
		return label + " is required"

	// ===== STRING FORMAT =====
	case "email":
		return "Invalid email format"
	case "url":
		return label + " must be a valid URL"
	case "uuid":
		return label + " must be a valid UUID"

	// ===== SIZE/LENGTH =====
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", label, param)
	case "min":
		if isNumberKind(kind) {
			return label + " must be at least " + param
		}
		return label + " must be at least " + param + " characters"
	case "max":
		if isNumberKind(kind) {
			return label + " must be at most " + param
		}
		return label + " must be at most " + param + " characters"

	// ===== NUMERIC COMPARISON =====
	case "gte":
		return label + " must be greater than or equal to " + param
	case "lte":
		return label + " must be less than or equal to " + param
	case "oneof":
		return label + " must be one of: " + strings.Join(strings.Fields(param), ", ")

	default:
		if param != "" {
			return fmt.Sprintf("%s failed '%s' with parameter '%s'", label, tag, param)
		}
		return fmt.Sprintf("%s failed '%s'", label, tag)
	}
}

// Label turns a JSON field name into the human label used in messages: "age" -> "Age".
func Label(field string) string {
	if field == "" {
		return "Value"
	}
	r, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToUpper(r)) + field[size:]
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
