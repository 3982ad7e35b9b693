package form

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal decodes url.Values into target by `form` struct tags.
// Supports string, bool, int and []string fields; multi-select inputs
// map onto the slice kind.
func Unmarshal(input url.Values, target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return &InvalidUnmarshalError{Type: reflect.TypeOf(target)}
	}

	v := val.Elem()
	ttype := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := ttype.Field(i)
		fieldName := field.Tag.Get("form")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		value, exists := input[fieldName]
		if !exists || len(value) == 0 {
			continue
		}
		fieldVal := v.Field(i)

		switch field.Type.Kind() {
		case reflect.String:
			fieldVal.SetString(value[0])
		case reflect.Bool:
			fieldVal.SetBool(strings.ToLower(value[0]) == "true")
		case reflect.Int:
			if value[0] == "" {
				continue
			}
			intValue, err := strconv.Atoi(value[0])
			if err != nil {
				return err
			}
			fieldVal.SetInt(int64(intValue))
		case reflect.Slice:
			if field.Type.Elem().Kind() != reflect.String {
				continue
			}
			out := make([]string, 0, len(value))
			for _, raw := range value {
				if raw = strings.TrimSpace(raw); raw != "" {
					out = append(out, raw)
				}
			}
			fieldVal.Set(reflect.ValueOf(out))
		}
	}
	return nil
}

type InvalidUnmarshalError struct {
	Type reflect.Type
}

func (e *InvalidUnmarshalError) Error() string {
	if e.Type == nil {
		return "form: Unmarshal(nil)"
	}

	if e.Type.Kind() != reflect.Pointer {
		return "form: Unmarshal(non-pointer " + e.Type.String() + ")"
	}
	return "form: Unmarshal(nil " + e.Type.String() + ")"
}
