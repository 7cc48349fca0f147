// FILE: lixenwraith/varconf/loader.go
package varconf

import (
	"fmt"
	"reflect"
)

// Loader wraps a mutable data map and a lower-priority defaults map backed by
// some medium. All key operations traverse nested maps segment by segment.
type Loader interface {
	fmt.Stringer

	// Get returns the value at key, or fallback on any miss. It never fails.
	Get(key Key, fallback any) any

	// Lookup returns the value at key, or a *KeyNotFoundError.
	Lookup(key Key) (any, error)

	// Set writes value at key into data, never into defaults.
	Set(key Key, value any) error

	// Delete removes key from data.
	Delete(key Key) error

	Data() map[string]any
	Defaults() map[string]any

	// LookupData returns data layered over defaults.
	LookupData() map[string]any

	// Reset replaces data, and defaults when non-nil. It is the receiving side of DumpTo.
	Reset(data, defaults map[string]any) error

	// Dump persists data, merged with defaults if requested, to the medium.
	Dump(includeDefaults bool) error
}

// DumpTo copies src's data, plus its defaults when includeDefaults is set,
// into dst and then dumps dst.
func DumpTo(src, dst Loader, includeDefaults bool) error {
	if isNilLoader(src) {
		return fmt.Errorf("%w: nil source loader", ErrInvalidLoader)
	}
	if isNilLoader(dst) {
		return fmt.Errorf("%w: %s got nil target loader", ErrInvalidLoader, src)
	}

	var defaults map[string]any
	if includeDefaults {
		defaults = src.Defaults()
	}
	if err := dst.Reset(src.Data(), defaults); err != nil {
		return fmt.Errorf("failed to copy %s into %s: %w", src, dst, err)
	}
	return dst.Dump(includeDefaults)
}

func isNilLoader(l Loader) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
