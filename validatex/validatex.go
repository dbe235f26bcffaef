package validatex

import (
	"fmt"
	"strings"
)

// Validatable can be implemented by types that validate themselves
type Validatable interface {
	Validate() error
}

// FieldError describes one failed rule on one field
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field %s failed rule %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("field %s failed rule %s", e.Field, e.Rule)
}

// Errors collects every failed rule from one Validate call
type Errors []FieldError

func (e Errors) Error() string {
	messages := make([]string, len(e))
	for i, fieldError := range e {
		messages[i] = fieldError.Error()
	}
	return strings.Join(messages, "; ")
}

// Has reports whether any field failed the given rule
func (e Errors) Has(rule string) bool {
	for _, fieldError := range e {
		if fieldError.Rule == rule {
			return true
		}
	}
	return false
}

// Validate checks a struct against its `validatex` tags. It returns nil when
// every rule passes, or an Errors value listing each failure. Optional fields
// (no `required` rule) are skipped while zero, so `url` on an empty string
// does not fail.
func Validate(obj any) error {
	if v, ok := obj.(Validatable); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	fields, err := structFields(obj)
	if err != nil {
		return err
	}

	var failures Errors
	for _, field := range fields {
		required := false
		for _, rule := range field.Rules {
			if rule.Name == "required" {
				required = true
				break
			}
		}

		for _, rule := range field.Rules {
			if !required && rule.Name != "required" && isZero(field.Value) {
				continue
			}

			fn, ok := getValidationFunc(rule.Name)
			if !ok {
				return fmt.Errorf("validatex: unknown rule %q on field %s", rule.Name, field.Name)
			}
			if !fn(field.Value, rule.Param) {
				failures = append(failures, FieldError{
					Field: field.Name,
					Rule:  rule.Name,
					Param: rule.Param,
				})
			}
		}
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}
