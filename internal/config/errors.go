package config

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is wrapped by every *TypeMismatchError.
	ErrTypeMismatch = errors.New("config type mismatch")

	// ErrUnknownKey is returned only by stores built with WithStrictKeys.
	ErrUnknownKey = errors.New("unknown config key")
)

// TypeMismatchError reports an update value whose type differs from the
// stored value's type.
type TypeMismatchError struct {
	Key      string
	Expected Kind
	Received any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("config key %q expects %s, got %s", e.Key, e.Expected, describe(e.Received))
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// UnknownKeyError names a key missing from the schema.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("config key %q is not part of the %s schema", e.Key, Namespace)
}

func (e *UnknownKeyError) Unwrap() error { return ErrUnknownKey }
