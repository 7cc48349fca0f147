// FILE: lixenwraith/varconf/validate.go
package varconf

import (
	"cmp"
	"slices"
)

// Predicate adapts a boolean check into a Validator that reports reason on rejection.
func Predicate[T any](ok func(T) bool, reason string) Validator[T] {
	return func(value T) error {
		if ok(value) {
			return nil
		}
		return &ValidationError{Reason: reason}
	}
}

// Between accepts values in the closed range [lo, hi].
func Between[T cmp.Ordered](lo, hi T) Validator[T] {
	return func(value T) error {
		if value < lo || value > hi {
			return Invalid("%v is outside [%v, %v]", value, lo, hi)
		}
		return nil
	}
}

// OneOf accepts only the listed values.
func OneOf[T comparable](allowed ...T) Validator[T] {
	return func(value T) error {
		if !slices.Contains(allowed, value) {
			return Invalid("%v is not one of %v", value, allowed)
		}
		return nil
	}
}

// NotEmpty rejects the zero value.
func NotEmpty[T comparable]() Validator[T] {
	return func(value T) error {
		var zero T
		if value == zero {
			return Invalid("value is empty")
		}
		return nil
	}
}

// All chains validators, stopping at the first rejection.
func All[T any](validators ...Validator[T]) Validator[T] {
	return func(value T) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}
