package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent PATCH field from an explicit null (RFC 7396).
// Absent leaves the field untouched; null clears it.
type Optional[T any] struct {
	Present bool
	Value   *T
}

// Set returns a present Optional holding v
func Set[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: &v}
}

// Null returns a present Optional holding JSON null
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true}
}

// IsNull reports whether the field was sent as JSON null
func (o Optional[T]) IsNull() bool {
	return o.Present && o.Value == nil
}

// UnmarshalJSON only runs for keys present in the document
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
