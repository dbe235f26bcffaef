package validatex

import (
	"errors"
	"reflect"
	"strings"
)

var ErrNotStruct = errors.New("value must be a struct")

// fieldInfo stores information about a tagged struct field
type fieldInfo struct {
	Name  string
	Value any
	Rules []ruleInfo
}

// ruleInfo stores one parsed validation rule
type ruleInfo struct {
	Name  string
	Param string
}

// structFields collects every field carrying a validatex tag, recursing into
// nested structs with dotted names
func structFields(obj any) ([]fieldInfo, error) {
	val := reflect.ValueOf(obj)

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	typ := val.Type()
	var fields []fieldInfo

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldValue := val.Field(i)

		tag := field.Tag.Get("validatex")
		if tag != "" && tag != "-" {
			fields = append(fields, fieldInfo{
				Name:  field.Name,
				Value: fieldValue.Interface(),
				Rules: parseTag(tag),
			})
		}

		nested := fieldValue
		if nested.Kind() == reflect.Ptr && !nested.IsNil() {
			nested = nested.Elem()
		}
		if nested.Kind() == reflect.Struct {
			nestedFields, err := structFields(nested.Interface())
			if err != nil {
				continue
			}
			for _, nf := range nestedFields {
				nf.Name = field.Name + "." + nf.Name
				fields = append(fields, nf)
			}
		}
	}

	return fields, nil
}

// parseTag parses a validatex tag string into validation rules
func parseTag(tag string) []ruleInfo {
	parts := strings.Split(tag, ",")
	rules := make([]ruleInfo, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, param, _ := strings.Cut(part, "=")
		rules = append(rules, ruleInfo{Name: name, Param: param})
	}

	return rules
}

// isZero checks if a value is the zero value for its type
func isZero(value any) bool {
	if value == nil {
		return true
	}

	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		return val.IsNil()
	}

	switch val.Kind() {
	case reflect.String:
		return val.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return val.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return val.Float() == 0
	case reflect.Bool:
		return !val.Bool()
	case reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() == 0
	default:
		return reflect.DeepEqual(val.Interface(), reflect.Zero(val.Type()).Interface())
	}
}
