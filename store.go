// FILE: lixenwraith/varconf/store.go
package varconf

import (
	"fmt"
	"log/slog"
)

// store holds the data and defaults maps shared by every concrete loader
// and implements key traversal over them. Concrete loaders embed it and add Dump.
type store struct {
	kind     string
	origin   string
	data     map[string]any
	defaults map[string]any
	opts     loaderOptions
}

func newStore(kind, origin string, data map[string]any, opts loaderOptions) store {
	if data == nil {
		data = make(map[string]any)
	}
	return store{
		kind:     kind,
		origin:   origin,
		data:     data,
		defaults: cloneMap(opts.defaults),
		opts:     opts,
	}
}

// String identifies the loader in errors and logs.
func (s *store) String() string {
	if s.opts.name != "" {
		return s.opts.name
	}
	if s.origin == "" {
		return s.kind
	}
	return s.kind + ":" + s.origin
}

// Get returns the value at key, or fallback on any miss.
func (s *store) Get(key Key, fallback any) any {
	v, err := s.Lookup(key)
	if err != nil {
		return fallback
	}
	return v
}

// Lookup returns the value at key, searching data before defaults.
func (s *store) Lookup(key Key) (any, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	if v, ok := layeredLookup(s.data, s.defaults, key.segments); ok {
		return v, nil
	}
	return nil, s.notFound(key)
}

// Set writes value at key into data. The key must already resolve unless
// the loader allows creation. Defaults are never written.
func (s *store) Set(key Key, value any) error {
	if key.IsZero() {
		return fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	if !s.opts.allowCreate {
		if _, ok := layeredLookup(s.data, s.defaults, key.segments); !ok {
			return s.notFound(key)
		}
	}
	if !setNested(s.data, key.segments, value) {
		return s.notFound(key)
	}
	return nil
}

// Delete removes key from data.
func (s *store) Delete(key Key) error {
	if key.IsZero() {
		return fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	if !deleteNested(s.data, key.segments) {
		return s.notFound(key)
	}
	return nil
}

// Data returns a deep copy of the live data.
func (s *store) Data() map[string]any {
	return cloneMap(s.data)
}

// Defaults returns a deep copy of the defaults.
func (s *store) Defaults() map[string]any {
	return cloneMap(s.defaults)
}

// LookupData returns data layered over defaults.
func (s *store) LookupData() map[string]any {
	return mergeMaps(s.defaults, s.data)
}

// Reset replaces data with a copy of data. Defaults are replaced only when
// defaults is non-nil.
func (s *store) Reset(data, defaults map[string]any) error {
	s.data = cloneMap(data)
	if defaults != nil {
		s.defaults = cloneMap(defaults)
	}
	return nil
}

// snapshot returns what Dump persists.
func (s *store) snapshot(includeDefaults bool) map[string]any {
	if includeDefaults {
		return mergeMaps(s.defaults, s.data)
	}
	return cloneMap(s.data)
}

func (s *store) storage() *store { return s }

func (s *store) logger() *slog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return slog.Default()
}

func (s *store) notFound(key Key) error {
	return &KeyNotFoundError{Key: key, Loaders: []string{s.String()}}
}
