package validator

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// ValidatorFunc checks value against a tag rule. ok is false when the rule fails.
type ValidatorFunc func(value reflect.Value, params []string) (ok bool, message string)

var (
	registryMu sync.RWMutex
	registry   = map[string]ValidatorFunc{
		"required": requiredValidator,
		"min":      minValidator,
		"max":      maxValidator,
		"email":    stringCheck(IsEmail, "must be a valid email address"),
		"url":      stringCheck(IsURL, "must be a valid URL"),
		"uuid":     stringCheck(IsUUID, "must be a valid UUID"),
		"in":       inValidator,
		"positive": positiveValidator,
	}
)

// RegisterValidator adds or replaces a tag rule.
func RegisterValidator(name string, fn ValidatorFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// ValidateStruct checks `validate:"required;min:3;in:a,b"` tags on v's fields.
// Field names in errors come from the json tag when present.
// Rules other than required are skipped for empty values.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	var errs ValidationErrors
	validateStruct(rv.Elem(), "", &errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateStruct(rv reflect.Value, prefix string, errs *ValidationErrors) {
	rt := rv.Type()
	for i := range rv.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("validate")
		if tag == "-" {
			continue
		}

		name := fieldName(sf)
		if prefix != "" {
			name = prefix + "." + name
		}

		field := rv.Field(i)
		if field.Kind() == reflect.Pointer && !field.IsNil() {
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct && tag == "" {
			validateStruct(field, name, errs)
			continue
		}
		if tag != "" {
			validateField(name, field, tag, errs)
		}
	}
}

func fieldName(sf reflect.StructField) string {
	if tag, _, _ := strings.Cut(sf.Tag.Get("json"), ","); tag != "" && tag != "-" {
		return tag
	}
	return sf.Name
}

func validateField(name string, field reflect.Value, tag string, errs *ValidationErrors) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	empty := isEmpty(field)
	for raw := range strings.SplitSeq(tag, ";") {
		ruleName, paramStr, _ := strings.Cut(strings.TrimSpace(raw), ":")
		if ruleName == "" || (empty && ruleName != "required") {
			continue
		}
		var params []string
		if paramStr != "" {
			for p := range strings.SplitSeq(paramStr, ",") {
				params = append(params, strings.TrimSpace(p))
			}
		}
		fn, ok := registry[ruleName]
		if !ok {
			continue
		}
		if ok, msg := fn(field, params); !ok {
			*errs = append(*errs, ValidationError{Field: name, Message: msg})
		}
	}
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return v.IsZero()
	}
}

func requiredValidator(v reflect.Value, _ []string) (bool, string) {
	return !isEmpty(v), "field is required"
}

func stringCheck(fn func(string) bool, msg string) ValidatorFunc {
	return func(v reflect.Value, _ []string) (bool, string) {
		if v.Kind() != reflect.String {
			return true, ""
		}
		return fn(v.String()), msg
	}
}

func minValidator(v reflect.Value, params []string) (bool, string) {
	return compareBound(v, params, func(n, bound float64) bool { return n >= bound }, "at least")
}

func maxValidator(v reflect.Value, params []string) (bool, string) {
	return compareBound(v, params, func(n, bound float64) bool { return n <= bound }, "at most")
}

func compareBound(v reflect.Value, params []string, cmp func(n, bound float64) bool, word string) (bool, string) {
	if len(params) == 0 {
		return true, ""
	}
	bound, err := strconv.ParseFloat(params[0], 64)
	if err != nil {
		return true, ""
	}

	switch v.Kind() {
	case reflect.String:
		return cmp(float64(utf8.RuneCountInString(v.String())), bound),
			fmt.Sprintf("must be %s %s characters", word, params[0])
	case reflect.Slice, reflect.Array, reflect.Map:
		return cmp(float64(v.Len()), bound), fmt.Sprintf("must have %s %s items", word, params[0])
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp(float64(v.Int()), bound), fmt.Sprintf("must be %s %s", word, params[0])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmp(float64(v.Uint()), bound), fmt.Sprintf("must be %s %s", word, params[0])
	case reflect.Float32, reflect.Float64:
		return cmp(v.Float(), bound), fmt.Sprintf("must be %s %s", word, params[0])
	}
	return true, ""
}

func inValidator(v reflect.Value, params []string) (bool, string) {
	msg := "must be one of: " + strings.Join(params, ", ")
	switch v.Kind() {
	case reflect.String:
		return slices.Contains(params, v.String()), msg
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if e := v.Index(i); e.Kind() == reflect.String && !slices.Contains(params, e.String()) {
				return false, msg
			}
		}
	}
	return true, ""
}

func positiveValidator(v reflect.Value, _ []string) (bool, string) {
	const msg = "must be positive"
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() > 0, msg
	case reflect.Float32, reflect.Float64:
		return v.Float() > 0, msg
	}
	return true, ""
}
