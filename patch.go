package crudgen

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type patchState uint8

const (
	patchUnset patchState = iota
	patchNull
	patchSet
)

// Patch is a tri-state input value. It distinguishes a field that was not
// supplied (unset), one that was explicitly cleared (null), and one that
// carries a value (set). The zero Patch is unset.
//
// Decoding follows JSON presence: an absent key leaves the Patch unset, a
// literal null makes it null, anything else is decoded into T.
type Patch[T any] struct {
	state patchState
	value T
}

// Set returns a Patch holding v.
func Set[T any](v T) Patch[T] {
	return Patch[T]{state: patchSet, value: v}
}

// Null returns an explicitly cleared Patch.
func Null[T any]() Patch[T] {
	return Patch[T]{state: patchNull}
}

// IsSet reports whether the Patch carries a value.
func (p Patch[T]) IsSet() bool { return p.state == patchSet }

// IsNull reports whether the Patch was explicitly cleared.
func (p Patch[T]) IsNull() bool { return p.state == patchNull }

// IsUnset reports whether the Patch was not supplied.
func (p Patch[T]) IsUnset() bool { return p.state == patchUnset }

// IsZero reports whether the Patch is unset. It makes `json:",omitzero"`
// drop unset fields when encoding.
func (p Patch[T]) IsZero() bool { return p.state == patchUnset }

// Get returns the value and whether it is set.
func (p Patch[T]) Get() (T, bool) {
	return p.value, p.state == patchSet
}

// Value returns the value, or the zero T when the Patch is not set.
func (p Patch[T]) Value() T {
	return p.value
}

// Ptr returns a pointer to the value, or nil when the Patch is not set.
func (p Patch[T]) Ptr() *T {
	if p.state != patchSet {
		return nil
	}
	v := p.value
	return &v
}

// String implements fmt.Stringer.
func (p Patch[T]) String() string {
	switch p.state {
	case patchNull:
		return "null"
	case patchSet:
		return fmt.Sprint(p.value)
	default:
		return "unset"
	}
}

// MarshalJSON implements json.Marshaler. Unset and null both encode as null.
func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if p.state != patchSet {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		p.state, p.value = patchNull, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.state, p.value = patchSet, v
	return nil
}

// Ptr returns a pointer to v. It is handy in default expressions of
// optional fields, e.g. on_create=crudgen.Ptr(0).
func Ptr[T any](v T) *T {
	return &v
}
