package domain

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Optional is one field of a partial update. Set marks the field as present in
// the request; fields that are not set are left untouched.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field as present. A JSON null sets the zero value.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// NullIfEmpty turns an empty string into a NULL column value.
func NullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func setIf[T any](cols map[string]any, column string, f Optional[T]) {
	if f.Set {
		cols[column] = f.Value
	}
}

// OptionalDate converts a patched YYYY-MM-DD string. null or "" clears the
// date; ok is false when the string is not a valid date.
func OptionalDate(o Optional[*string]) (Optional[*datatypes.Date], bool) {
	if !o.Set {
		return Optional[*datatypes.Date]{}, true
	}
	if o.Value == nil {
		return Some[*datatypes.Date](nil), true
	}
	d, ok := ParseDate(*o.Value)
	if !ok {
		return Optional[*datatypes.Date]{}, false
	}
	return Some(d), true
}
