// Package optional distinguishes "absent" from "explicit null" in JSON
// request bodies, which partial updates need.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field is a JSON value that records whether it was present and whether it
// was null.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Of returns a present, non-null field.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null returns a present field holding JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// UnmarshalJSON is only called by encoding/json when the key is present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent or null fields. Use omitzero on the
// struct tag to drop absent ones.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// IsZero reports whether the field was absent, for the omitzero tag option.
func (f Field[T]) IsZero() bool { return !f.Set }

// Ptr returns the value as a pointer: nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.Set || f.Null {
		return nil
	}
	v := f.Value
	return &v
}
