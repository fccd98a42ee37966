package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"mediareviews/internal/pkg/optional"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their JSON names so clients see the wire field.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterCustomTypeFunc(optionalValue,
		optional.Field[string]{},
		optional.Field[int]{},
		optional.Field[int64]{},
		optional.Field[bool]{},
	)
}

// optionalValue exposes a present, non-null optional.Field as a pointer to
// its value, and nil otherwise so omitempty skips it. The pointer keeps zero
// values (rating 0, "") subject to the remaining rules.
func optionalValue(v reflect.Value) any {
	if !v.FieldByName("Set").Bool() || v.FieldByName("Null").Bool() {
		return nil
	}
	val := v.FieldByName("Value")
	p := reflect.New(val.Type())
	p.Elem().Set(val)
	return p.Interface()
}

// FieldError is one entry of a 422 response body.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// NewFieldError builds an error located at body.<field>.
func NewFieldError(field, msg, typ string) FieldError {
	return FieldError{Loc: []string{"body", field}, Msg: msg, Type: typ}
}

// Validate struct fields
func Validate(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, typ := describe(fe)
		out = append(out, NewFieldError(fe.Field(), msg, typ))
	}
	return out
}

func describe(fe validator.FieldError) (string, string) {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Field required", "missing"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("String should have at least %s character(s)", fe.Param()), "string_too_short"
		}
		return "Input should be greater than or equal to " + fe.Param(), "greater_than_equal"
	case "max", "lte":
		if isString {
			return fmt.Sprintf("String should have at most %s character(s)", fe.Param()), "string_too_long"
		}
		return "Input should be less than or equal to " + fe.Param(), "less_than_equal"
	case "oneof":
		return "Input should be " + quoteChoices(strings.Fields(fe.Param())), "enum"
	default:
		return fmt.Sprintf("Value failed the %q check", fe.Tag()), fe.Tag()
	}
}

func quoteChoices(choices []string) string {
	quoted := make([]string, len(choices))
	for i, c := range choices {
		quoted[i] = "'" + c + "'"
	}
	if len(quoted) < 2 {
		return strings.Join(quoted, "")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// FromDecodeError turns a JSON body decoding failure into 422 entries.
func FromDecodeError(err error) []FieldError {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			return []FieldError{{Loc: []string{"body"}, Msg: "Input should be a valid object", Type: "model_type"}}
		}
		return []FieldError{NewFieldError(field, "Input should be a valid "+typeName(typeErr.Type), typeName(typeErr.Type)+"_type")}
	case errors.Is(err, io.EOF):
		return []FieldError{{Loc: []string{"body"}, Msg: "Field required", Type: "missing"}}
	default:
		return []FieldError{{Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid"}}
	}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	default:
		return "value"
	}
}
