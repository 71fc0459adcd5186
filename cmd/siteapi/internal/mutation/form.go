package mutation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FieldType selects how a raw form value is coerced.
type FieldType int

const (
	// Text is trimmed; empty becomes nil.
	Text FieldType = iota
	// Int is a whole number; empty becomes nil.
	Int
	// Bool is a checkbox: present and truthy is true, anything else false.
	Bool
	// Lines splits on newlines, trimming and dropping blank lines.
	Lines
	// List splits on newlines and commas.
	List
	// Reasons parses "title | description | icon" lines into objects.
	Reasons
)

// Field describes one form input.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// Min and Max bound Int fields when non-nil.
	Min, Max *int
}

// Form is an ordered set of fields for one entity kind or section.
type Form []Field

func bound(n int) *int { return &n }

// Coerce converts raw form values to typed document values. The result
// holds every declared field; empty inputs map to nil.
func (f Form) Coerce(values url.Values) (map[string]any, error) {
	out := make(map[string]any, len(f))
	for _, field := range f {
		raw, present := values[field.Name]
		value := ""
		if present && len(raw) > 0 {
			value = raw[0]
		}

		v, err := coerceField(field, value, present)
		if err != nil {
			return nil, err
		}
		if field.Required && isEmpty(v) {
			return nil, &ValidationError{Field: field.Name, Message: fmt.Sprintf("%s is required", label(field.Name))}
		}
		out[field.Name] = v
	}
	return out, nil
}

func coerceField(field Field, value string, present bool) (any, error) {
	switch field.Type {
	case Text:
		return emptyToNil(strings.TrimSpace(value)), nil

	case Int:
		s := strings.TrimSpace(value)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ValidationError{Field: field.Name, Message: fmt.Sprintf("%s must be a whole number", label(field.Name))}
		}
		if field.Min != nil && n < *field.Min {
			return nil, &ValidationError{Field: field.Name, Message: fmt.Sprintf("%s must be at least %d", label(field.Name), *field.Min)}
		}
		if field.Max != nil && n > *field.Max {
			return nil, &ValidationError{Field: field.Name, Message: fmt.Sprintf("%s must be at most %d", label(field.Name), *field.Max)}
		}
		return n, nil

	case Bool:
		if !present {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "on", "true", "1", "yes":
			return true, nil
		}
		return false, nil

	case Lines:
		return SplitLines(value), nil

	case List:
		return SplitList(value), nil

	case Reasons:
		lines := SplitLines(value)
		reasons := make([]any, 0, len(lines))
		for _, line := range lines {
			parts := strings.SplitN(line, "|", 3)
			reason := map[string]any{"title": strings.TrimSpace(parts[0])}
			if len(parts) > 1 {
				reason["description"] = strings.TrimSpace(parts[1])
			}
			if len(parts) > 2 {
				reason["icon"] = strings.TrimSpace(parts[2])
			}
			if reason["title"] == "" {
				return nil, &ValidationError{Field: field.Name, Message: fmt.Sprintf("every line of %s needs a title", label(field.Name))}
			}
			reasons = append(reasons, reason)
		}
		return reasons, nil
	}
	return nil, fmt.Errorf("unsupported field type %d", field.Type)
}

// SplitLines splits s on newlines, trimming whitespace and dropping blank lines.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return compact(strings.Split(s, "\n"))
}

// SplitList splits s on newlines and commas.
func SplitList(s string) []string {
	return compact(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' }))
}

func compact(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func label(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
