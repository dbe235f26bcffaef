package validatex

import (
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ValidationFunc defines a function that validates a value
type ValidationFunc func(value any, param string) bool

// builtinValidationFuncs is a map of built-in validation functions
var builtinValidationFuncs = map[string]ValidationFunc{
	"required": validateRequired,
	"url":      validateURL,
	"min":      validateMin,
	"max":      validateMax,
	"oneof":    validateOneOf,
	"regex":    validateRegex,
}

// customValidationFuncs is a map of user-registered validation functions
var customValidationFuncs = map[string]ValidationFunc{}

// RegisterValidationFunc registers a custom validation function. Custom
// functions shadow built-ins of the same name.
func RegisterValidationFunc(name string, fn ValidationFunc) {
	customValidationFuncs[name] = fn
}

// getValidationFunc returns a validation function by name
func getValidationFunc(name string) (ValidationFunc, bool) {
	if fn, ok := customValidationFuncs[name]; ok {
		return fn, true
	}
	if fn, ok := builtinValidationFuncs[name]; ok {
		return fn, true
	}
	return nil, false
}

// validateRequired validates that a value is not empty
func validateRequired(value any, _ string) bool {
	return !isZero(value)
}

// validateURL validates that a value is an absolute http(s) URL. Bare
// hostnames without a dot are fine, e.g. http://waha:3000.
func validateURL(value any, _ string) bool {
	str, ok := value.(string)
	if !ok {
		return false
	}
	parsed, err := url.Parse(str)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// validateMin validates that a value is at least a minimum
func validateMin(value any, param string) bool {
	min, err := strconv.Atoi(param)
	if err != nil {
		return false
	}
	return compareSize(value, func(size int) bool { return size >= min })
}

// validateMax validates that a value is at most a maximum
func validateMax(value any, param string) bool {
	max, err := strconv.Atoi(param)
	if err != nil {
		return false
	}
	return compareSize(value, func(size int) bool { return size <= max })
}

// compareSize applies cmp to the natural size of a value: the length of a
// string, slice, map or array, or the magnitude of a number
func compareSize(value any, cmp func(int) bool) bool {
	switch v := value.(type) {
	case string:
		return cmp(len(v))
	case int:
		return cmp(v)
	case int64:
		return cmp(int(v))
	case float64:
		return cmp(int(v))
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			return cmp(rv.Len())
		}
		return false
	}
}

// validateOneOf validates that a value is one of a space-separated list
func validateOneOf(value any, param string) bool {
	str, ok := value.(string)
	if !ok {
		return false
	}
	for _, allowed := range strings.Fields(param) {
		if allowed == str {
			return true
		}
	}
	return false
}

// validateRegex validates that a value matches a regular expression
func validateRegex(value any, param string) bool {
	str, ok := value.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(param)
	if err != nil {
		return false
	}
	return re.MatchString(str)
}
