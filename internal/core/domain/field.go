package domain

import "encoding/json"

// Field carries an optional value together with whether it was supplied at
// all, so that "absent" and "present with the zero value" stay distinct.
type Field[T any] struct {
	Value T
	Set   bool
}

func Some[T any](value T) Field[T] {
	return Field[T]{Value: value, Set: true}
}

func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// UnmarshalJSON is only invoked when the key is present, null included.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true

	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}

	return json.Marshal(f.Value)
}
