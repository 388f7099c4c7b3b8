package models

import "encoding/json"

// Optional is a patch field that distinguishes an absent JSON key from an
// explicit null. Set reports whether the key appeared in the payload; a Set
// field with a nil Value clears the stored value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}
