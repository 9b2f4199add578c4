// Package clone deep-copies snapshot values held by the ranking engine.
package clone

import (
	"encoding/json"

	"github.com/mitchellh/copystructure"
)

// Of returns a deep copy of v that shares no mutable memory with it.
//
// A structural copy is attempted first, then a JSON round trip. If both fail
// the value itself is returned, which is a shallow copy for maps and slices.
func Of[T any](v T) T {
	if out, err := copystructure.Copy(v); err == nil {
		if typed, ok := out.(T); ok {
			return typed
		}
	}
	if out, ok := viaJSON(v); ok {
		return out
	}
	return v
}

func viaJSON[T any](v T) (T, bool) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}
