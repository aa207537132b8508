package model

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one entry of a collection (a client, requirement, order or search result).
// It is a pure domain model with no database-specific dependencies or tags.
type Record struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Status    string         `json:"status"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a copy whose Fields map can be modified independently.
// Field values are primitives, so a shallow map copy is a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Fields = maps.Clone(r.Fields)
	if out.Fields == nil {
		out.Fields = map[string]any{}
	}
	return &out
}

// Value resolves a column name against the record: the metadata columns first, then Fields.
func (r *Record) Value(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "kind":
		return string(r.Kind), true
	case "status":
		return r.Status, true
	case "created_at":
		return r.CreatedAt, true
	case "updated_at":
		return r.UpdatedAt, true
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Text returns the string form of a column, or "" if it is absent.
func (r *Record) Text(name string) string {
	v, ok := r.Value(name)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify formats a primitive field value the way it is compared in filters and exports.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

// NewID builds a record id: the kind prefix, the creation time in milliseconds and a random suffix.
func NewID(prefix string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}

// ValidID reports whether id has the shape produced by NewID for the given prefix.
func ValidID(prefix, id string) bool {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != prefix || parts[2] == "" {
		return false
	}
	_, err := strconv.ParseInt(parts[1], 10, 64)
	return err == nil
}
