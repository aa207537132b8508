package model

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType describes how a field value is validated, compared and coerced.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldEmail  FieldType = "email"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldEnum   FieldType = "enum"
)

// DateLayout is the calendar-date layout accepted for date fields besides RFC 3339.
const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field declares one attribute of a record kind.
type Field struct {
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	Type       FieldType `json:"type"`
	Required   bool      `json:"required"`
	Positive   bool      `json:"positive,omitempty"`
	Options    []string  `json:"options,omitempty"`
	Searchable bool      `json:"searchable"`
	Filterable bool      `json:"filterable"`
}

// Schema is the closed definition of one record variant.
// Statuses[0] is the default status used for new records and for unrecognised values.
type Schema struct {
	Kind     Kind     `json:"kind"`
	IDPrefix string   `json:"id_prefix"`
	Statuses []string `json:"statuses"`
	Fields   []Field  `json:"fields"`
}

// Field returns the declared field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// DefaultStatus is the status assigned when none (or an unknown one) is given.
func (s *Schema) DefaultStatus() string { return s.Statuses[0] }

// HasStatus reports whether v is a member of the kind's status set.
func (s *Schema) HasStatus(v string) bool { return slices.Contains(s.Statuses, v) }

// NormalizeStatus maps v onto the status set, falling back to the default.
func (s *Schema) NormalizeStatus(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if s.HasStatus(v) {
		return v
	}
	return s.DefaultStatus()
}

// SearchFields lists the text fields a free-text search looks at.
func (s *Schema) SearchFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f.Name)
		}
	}
	return out
}

// Filterable reports whether name may be used as a categorical filter.
func (s *Schema) Filterable(name string) bool {
	if name == "status" || name == "id" {
		return true
	}
	f, ok := s.Field(name)
	return ok && f.Filterable
}

// Sortable reports whether name may be used as a sort key.
func (s *Schema) Sortable(name string) bool {
	switch name {
	case "id", "status", "created_at", "updated_at":
		return true
	}
	_, ok := s.Field(name)
	return ok
}

// Defaults returns the empty form state for a new record of this kind.
func (s *Schema) Defaults() map[string]any {
	out := make(map[string]any, len(s.Fields)+1)
	for _, f := range s.Fields {
		out[f.Name] = ""
	}
	out["status"] = s.DefaultStatus()
	return out
}

// Validate checks values against the schema. It returns nil or a *ValidationError.
func (s *Schema) Validate(values map[string]any) error {
	verr := NewValidationError()
	for _, f := range s.Fields {
		raw, present := values[f.Name]
		text := strings.TrimSpace(Stringify(raw))
		if !present || raw == nil || text == "" {
			if f.Required {
				verr.Add(f.Name, fmt.Sprintf("%s is required", f.Name))
			}
			continue
		}
		if msg := f.check(raw, text); msg != "" {
			verr.Add(f.Name, msg)
		}
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

func (f Field) check(raw any, text string) string {
	switch f.Type {
	case FieldEmail:
		if !emailPattern.MatchString(text) {
			return fmt.Sprintf("%s must be a valid email address", f.Name)
		}
	case FieldNumber:
		d, ok := ToDecimal(raw)
		if !ok {
			return fmt.Sprintf("%s must be a number", f.Name)
		}
		if f.Positive && !d.IsPositive() {
			return fmt.Sprintf("%s must be greater than zero", f.Name)
		}
	case FieldDate:
		if _, ok := ParseDate(text); !ok {
			return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", f.Name)
		}
	case FieldEnum:
		if !slices.Contains(f.Options, strings.ToLower(text)) {
			return fmt.Sprintf("%s must be one of: %s", f.Name, strings.Join(f.Options, ", "))
		}
	}
	return ""
}

// Sanitize keeps only declared fields and coerces values to their stored form:
// numbers become float64, strings are trimmed, enum values are lower-cased.
// Values that fail coercion are kept as given; Validate reports them.
func (s *Schema) Sanitize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for name, raw := range values {
		f, ok := s.Field(name)
		if !ok {
			continue
		}
		out[name] = f.coerce(raw)
	}
	return out
}

func (f Field) coerce(raw any) any {
	if raw == nil {
		return nil
	}
	switch f.Type {
	case FieldNumber:
		if str, ok := raw.(string); ok && strings.TrimSpace(str) == "" {
			return ""
		}
		if d, ok := ToDecimal(raw); ok {
			return d.InexactFloat64()
		}
		return raw
	case FieldEnum:
		if str, ok := raw.(string); ok {
			return strings.ToLower(strings.TrimSpace(str))
		}
		return raw
	default:
		if str, ok := raw.(string); ok {
			return strings.TrimSpace(str)
		}
		return raw
	}
}

// ToDecimal converts a numeric field value (float, int, json.Number or numeric string).
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case int32:
		return decimal.NewFromInt32(n), true
	case decimal.Decimal:
		return n, true
	case fmt.Stringer:
		d, err := decimal.NewFromString(strings.TrimSpace(n.String()))
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

// ParseDate accepts YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
