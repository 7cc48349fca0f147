// FILE: lixenwraith/varconf/composite.go
package varconf

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Composite presents an ordered list of loaders as one. Reads return the
// first constituent holding the key; writes and deletes fan out to every
// constituent holding it.
type Composite struct {
	loaders  []Loader
	defaults map[string]any
	opts     loaderOptions
}

// NewComposite builds a composite. The first loader has the highest priority.
// Defaults given with WithDefaults are consulted after every constituent.
func NewComposite(loaders []Loader, opts ...LoaderOption) (*Composite, error) {
	if len(loaders) == 0 {
		return nil, fmt.Errorf("%w: composite needs at least one loader", ErrInvalidLoader)
	}
	for i, l := range loaders {
		if isNilLoader(l) {
			return nil, fmt.Errorf("%w: composite loader %d is nil", ErrInvalidLoader, i)
		}
	}
	o := applyLoaderOptions(opts)
	return &Composite{
		loaders:  slices.Clone(loaders),
		defaults: cloneMap(o.defaults),
		opts:     o,
	}, nil
}

// MustComposite is like NewComposite but panics on error
func MustComposite(loaders ...Loader) *Composite {
	c, err := NewComposite(loaders)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Composite) String() string {
	if c.opts.name != "" {
		return c.opts.name
	}
	return "composite(" + strings.Join(loaderNames(c.loaders), ", ") + ")"
}

// Loaders returns the constituents in priority order.
func (c *Composite) Loaders() []Loader {
	return slices.Clone(c.loaders)
}

func (c *Composite) Get(key Key, fallback any) any {
	v, err := c.Lookup(key)
	if err != nil {
		return fallback
	}
	return v
}

// Lookup returns the value from the first constituent holding key, then
// falls back to the composite's own defaults.
func (c *Composite) Lookup(key Key) (any, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	for _, l := range c.loaders {
		if v, err := l.Lookup(key); err == nil {
			return v, nil
		}
	}
	if v, ok := lookupNested(c.defaults, key.segments); ok {
		return v, nil
	}
	return nil, c.notFound(key)
}

// Origin returns the first constituent holding key.
func (c *Composite) Origin(key Key) (Loader, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	for _, l := range c.loaders {
		if _, err := l.Lookup(key); err == nil {
			return l, nil
		}
	}
	return nil, c.notFound(key)
}

// Set writes value into every constituent that already holds key. It fails
// only when none does, unless the key is in the composite's own defaults or
// the composite allows creation; the value is then created in the last,
// lowest-priority constituent.
func (c *Composite) Set(key Key, value any) error {
	if key.IsZero() {
		return fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	accepted := 0
	var errs []error
	for _, l := range c.loaders {
		if _, err := l.Lookup(key); err != nil {
			continue
		}
		if err := l.Set(key, value); err != nil {
			errs = append(errs, err)
			continue
		}
		accepted++
	}

	if accepted == 0 && len(errs) == 0 && c.canCreate(key) {
		base := c.loaders[len(c.loaders)-1]
		if err := createIn(base, key, value); err != nil {
			return err
		}
		accepted = 1
	}

	c.logger().Debug("composite write",
		slog.String("key", key.String()),
		slog.Int("accepted", accepted),
		slog.Int("failed", len(errs)))

	if accepted == 0 {
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
		return c.notFound(key)
	}
	return nil
}

// Delete removes key from every constituent holding it and fails only when
// none did.
func (c *Composite) Delete(key Key) error {
	if key.IsZero() {
		return fmt.Errorf("%w: zero key", ErrInvalidKey)
	}
	deleted := 0
	for _, l := range c.loaders {
		if err := l.Delete(key); err == nil {
			deleted++
		}
	}
	if deleted == 0 {
		return c.notFound(key)
	}
	return nil
}

// Data flattens the constituents' data into one map, earlier loaders
// shadowing later ones.
func (c *Composite) Data() map[string]any {
	merged := make(map[string]any)
	for _, l := range slices.Backward(c.loaders) {
		merged = mergeMaps(merged, l.Data())
	}
	return merged
}

// Defaults merges the constituents' defaults over the composite's own.
func (c *Composite) Defaults() map[string]any {
	merged := cloneMap(c.defaults)
	for _, l := range slices.Backward(c.loaders) {
		merged = mergeMaps(merged, l.Defaults())
	}
	return merged
}

func (c *Composite) LookupData() map[string]any {
	merged := cloneMap(c.defaults)
	for _, l := range slices.Backward(c.loaders) {
		merged = mergeMaps(merged, l.LookupData())
	}
	return merged
}

// Reset fails: a composite has no medium of its own to receive data.
func (c *Composite) Reset(data, defaults map[string]any) error {
	return fmt.Errorf("%w: %s cannot be reset", ErrUnsupported, c)
}

// Dump dumps every constituent, continuing past failures.
func (c *Composite) Dump(includeDefaults bool) error {
	var errs []error
	for _, l := range c.loaders {
		if err := l.Dump(includeDefaults); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DumpLoader dumps only target, which must be one of the constituents.
func (c *Composite) DumpLoader(target Loader, includeDefaults bool) error {
	if !slices.Contains(c.loaders, target) {
		return fmt.Errorf("%w: %v is not part of %s", ErrInvalidLoader, target, c)
	}
	return target.Dump(includeDefaults)
}

func (c *Composite) canCreate(key Key) bool {
	if c.opts.allowCreate {
		return true
	}
	_, declared := lookupNested(c.defaults, key.segments)
	return declared
}

// createIn writes a key l does not hold yet. Loaders built on store accept
// it regardless of their own creation policy.
func createIn(l Loader, key Key, value any) error {
	if s, ok := l.(interface{ storage() *store }); ok {
		if !setNested(s.storage().data, key.segments, value) {
			return s.storage().notFound(key)
		}
		return nil
	}
	return l.Set(key, value)
}

func (c *Composite) notFound(key Key) error {
	return &KeyNotFoundError{Key: key, Loaders: loaderNames(c.loaders)}
}

func (c *Composite) logger() *slog.Logger {
	if c.opts.logger != nil {
		return c.opts.logger
	}
	return slog.Default()
}
