// FILE: lixenwraith/varconf/config.go
package varconf

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
)

// Config holds one bound variable per field of its Schema. It is frozen once
// built unless built with Unfrozen; writes through a frozen config fail with
// ErrImmutable until Unfreeze is called.
type Config struct {
	schema *Schema
	loader Loader
	vars   []boundVar
	frozen bool
	logger *slog.Logger
}

// ConfigOption configures Schema.Build.
type ConfigOption func(*configOptions)

type configOptions struct {
	unfrozen bool
	postInit func(*Config) error
	logger   *slog.Logger
}

// Unfrozen leaves the built config writable.
func Unfrozen() ConfigOption {
	return func(o *configOptions) {
		o.unfrozen = true
	}
}

// WithPostInit runs fn after every variable is resolved and before the
// config is frozen, so fn may still assign values.
func WithPostInit(fn func(*Config) error) ConfigOption {
	return func(o *configOptions) {
		o.postInit = fn
	}
}

func WithConfigLogger(logger *slog.Logger) ConfigOption {
	return func(o *configOptions) {
		o.logger = logger
	}
}

// Build binds every declared field to l, or to the field's own loader, and
// resolves them in declaration order. l may be nil when every field carries
// its own loader.
func (s *Schema) Build(l Loader, opts ...ConfigOption) (*Config, error) {
	var o configOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if isNilLoader(l) {
		l = nil
	}

	s.sealed = true
	c := &Config{
		schema: s,
		loader: l,
		vars:   make([]boundVar, 0, len(s.fields)),
		logger: o.logger,
	}

	for _, f := range s.fields {
		v, err := f.bind(c, l)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s: %w", s.name, err)
		}
		c.vars = append(c.vars, v)
	}

	if o.postInit != nil {
		if err := o.postInit(c); err != nil {
			return nil, fmt.Errorf("post-init of %s failed: %w", s.name, err)
		}
	}

	c.frozen = !o.unfrozen
	c.logger.Debug("config built",
		slog.String("config", s.name),
		slog.Int("vars", len(c.vars)),
		slog.Bool("frozen", c.frozen))
	return c, nil
}

// MustBuild is like Build but panics on error
func (s *Schema) MustBuild(l Loader, opts ...ConfigOption) *Config {
	c, err := s.Build(l, opts...)
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return c
}

func (c *Config) Name() string { return c.schema.name }

// Schema returns the schema the config was built from.
func (c *Config) Schema() *Schema { return c.schema }

// Loader returns the loader passed to Build, which may be nil.
func (c *Config) Loader() Loader { return c.loader }

func (c *Config) Frozen() bool { return c.frozen }

func (c *Config) Freeze() { c.frozen = true }

func (c *Config) Unfreeze() { c.frozen = false }

// Keys returns the keys of the bound variables in declaration order.
func (c *Config) Keys() []Key {
	keys := make([]Key, len(c.vars))
	for i, v := range c.vars {
		keys[i] = v.Key()
	}
	return keys
}

// Loaders returns each distinct loader bound by a variable, in first-use order.
func (c *Config) Loaders() []Loader {
	var loaders []Loader
	for _, v := range c.vars {
		if src := v.Source(); src != nil && !slices.Contains(loaders, src) {
			loaders = append(loaders, src)
		}
	}
	return loaders
}

// Save dumps every distinct bound loader once, continuing past failures.
func (c *Config) Save(includeDefaults bool) error {
	var errs []error
	for _, l := range c.Loaders() {
		if err := l.Dump(includeDefaults); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.Name(), err)
	}
	return nil
}

// Snapshot returns the live values as a nested map keyed by variable keys.
func (c *Config) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, v := range c.vars {
		value, ok := v.snapshot()
		if !ok {
			continue
		}
		if !setNested(out, v.Key().segments, value) {
			c.logger.Warn("snapshot key conflicts with another variable",
				slog.String("config", c.Name()),
				slog.String("key", v.Key().String()))
		}
	}
	return out
}

// Scan decodes the live values into target, a non-nil pointer to a struct
// or map, matching fields by their `toml` tag.
func (c *Config) Scan(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}
	if err := decodeValue(c.Snapshot(), target, DefaultTagName); err != nil {
		return fmt.Errorf("failed to scan %s into %T: %w", c.Name(), target, err)
	}
	return nil
}

// Debug returns a formatted listing of every variable and its state.
func (c *Config) Debug() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config %s (frozen=%t):\n", c.Name(), c.frozen)
	for _, v := range c.vars {
		fmt.Fprintf(&b, "  %s:\n", v.Key().path())
		if value, ok := v.snapshot(); ok {
			fmt.Fprintf(&b, "    Value: %v\n", value)
		} else {
			b.WriteString("    Value: <unresolved>\n")
		}
		if src := v.Source(); src != nil {
			fmt.Fprintf(&b, "    Loader: %s\n", originOf(src, v.Key()))
		}
		if v.IsConstant() {
			b.WriteString("    Constant: true\n")
		}
	}
	return b.String()
}
