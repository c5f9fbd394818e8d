package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
)

// Nullable is a partial-update field for a nullable column. It tells an
// absent key (Set false, leave the column alone) apart from an explicit
// null (Set true, Val nil, write NULL).
type Nullable[T any] struct {
	Set bool
	Val *T
}

// Some returns a set Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Val: &v}
}

// Null returns a set Nullable that clears the column.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON only runs when the key is present, null included.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Val = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Val = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Val == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Val)
}

// Value exposes the wrapped value to validator tags and SQL drivers. Unset
// and null both yield nil.
func (n Nullable[T]) Value() (driver.Value, error) {
	if n.Val == nil {
		return nil, nil
	}
	return *n.Val, nil
}
