package qrtypes

import (
	"fmt"
	"strings"
)

// FieldError is one invalid content field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of a content payload.
type ValidationError struct {
	Type   string       `json:"type"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("invalid %s content: %s", e.Type, strings.Join(parts, "; "))
}

// Validate checks data against the type's fields. Keys the type does not
// declare are passed through untouched.
func (t Type) Validate(data map[string]any) error {
	verr := &ValidationError{Type: t.ID}
	for _, f := range t.Fields {
		v, present := data[f.ID]
		if msg := f.check(v, present); msg != "" {
			verr.Fields = append(verr.Fields, FieldError{Field: f.ID, Message: msg})
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (f Field) check(v any, present bool) string {
	if !present || v == nil {
		if f.Required {
			return "is required"
		}
		return ""
	}

	switch f.Type {
	case FieldBoolean:
		if _, ok := v.(bool); !ok {
			return "must be true or false"
		}
	case FieldText:
		s, ok := v.(string)
		if !ok {
			return "must be text"
		}
		if f.Required && strings.TrimSpace(s) == "" {
			return "is required"
		}
	case FieldChoice:
		s, ok := v.(string)
		if !ok {
			return "must be one of " + f.choiceValues()
		}
		if s == "" && !f.Required {
			return ""
		}
		if !f.hasChoice(s) {
			return "must be one of " + f.choiceValues()
		}
	}
	return ""
}

func (f Field) hasChoice(v string) bool {
	for _, c := range f.Choices {
		if c.value() == v {
			return true
		}
	}
	return false
}

func (f Field) choiceValues() string {
	vals := make([]string, len(f.Choices))
	for i, c := range f.Choices {
		vals[i] = c.value()
	}
	return strings.Join(vals, ", ")
}

func (c Choice) value() string {
	if c.Value != "" {
		return c.Value
	}
	return c.Name
}

// Defaults returns the declared default of every field that has one.
func (t Type) Defaults() map[string]any {
	out := map[string]any{}
	for _, f := range t.Fields {
		if f.Default != nil {
			out[f.ID] = f.Default
		}
	}
	return out
}
