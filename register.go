// FILE: lixenwraith/varconf/register.go
package varconf

import (
	"fmt"
	"reflect"
	"strings"
)

// Schema is the fixed set of variables a kind of config declares. Fields are
// declared once, usually in package-level vars, and the schema is sealed by
// its first Build.
type Schema struct {
	name   string
	fields []field
	keys   map[string]struct{}
	sealed bool
}

// field is the type-erased view of a Field[T] used while building.
type field interface {
	declaredKey() Key
	bind(c *Config, fallback Loader) (boundVar, error)
}

// boundVar is the type-erased view of a *Var[T] held by a Config.
type boundVar interface {
	Key() Key
	Source() Loader
	Resolved() bool
	IsConstant() bool
	Serialize() (any, error)
	String() string
	snapshot() (any, bool)
}

func NewSchema(name string) *Schema {
	return &Schema{name: name, keys: make(map[string]struct{})}
}

func (s *Schema) Name() string { return s.name }

// Keys returns the declared keys in declaration order.
func (s *Schema) Keys() []Key {
	keys := make([]Key, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.declaredKey()
	}
	return keys
}

// Field is the declaration of a variable in a Schema. A Config built from
// the schema holds one bound *Var[T] per Field.
type Field[T any] struct {
	schema *Schema
	index  int
	key    Key
	opts   []VarOption[T]
}

// Declare adds a variable at key to s. The default, if any, is validated
// now so a bad declaration fails before any config is built.
func Declare[T any](s *Schema, key any, opts ...VarOption[T]) (*Field[T], error) {
	if s.sealed {
		return nil, fmt.Errorf("%w: cannot declare %v on %s", ErrSealed, key, s.name)
	}
	decl, err := newVar(key, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to declare %v on %s: %w", key, s.name, err)
	}
	// Segments, not the slash form: NewKey("a/b") and "a/b" are different keys
	id := strings.Join(decl.key.segments, "\x00")
	if _, exists := s.keys[id]; exists {
		return nil, fmt.Errorf("%w: %s already declared on %s", ErrInvalidKey, decl.key, s.name)
	}

	f := &Field[T]{schema: s, index: len(s.fields), key: decl.key, opts: opts}
	s.fields = append(s.fields, f)
	s.keys[id] = struct{}{}
	return f, nil
}

// MustDeclare is like Declare but panics on error
func MustDeclare[T any](s *Schema, key any, opts ...VarOption[T]) *Field[T] {
	f, err := Declare(s, key, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field[T]) Key() Key { return f.key }

func (f *Field[T]) declaredKey() Key { return f.key }

func (f *Field[T]) bind(c *Config, fallback Loader) (boundVar, error) {
	v, err := newVar(f.key, f.opts)
	if err != nil {
		return nil, err
	}
	v.owner = c
	l := v.declaredLoader()
	if l == nil {
		l = fallback
	}
	if err := v.Bind(l); err != nil {
		return nil, err
	}
	return v, nil
}

// Var returns the bound variable itself rather than its value.
func (f *Field[T]) Var(c *Config) (*Var[T], error) {
	if c == nil || c.schema != f.schema || f.index >= len(c.vars) {
		return nil, fmt.Errorf("%w: %s", ErrForeignField, f.key)
	}
	return c.vars[f.index].(*Var[T]), nil
}

// Value returns the live value held by c.
func (f *Field[T]) Value(c *Config) (T, error) {
	v, err := f.Var(c)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.Value()
}

// Get is Value without the error.
func (f *Field[T]) Get(c *Config) T {
	value, _ := f.Value(c)
	return value
}

// Set assigns through c, failing with ErrImmutable while c is frozen.
func (f *Field[T]) Set(c *Config, value T) error {
	v, err := f.Var(c)
	if err != nil {
		return err
	}
	return v.Set(value)
}

// StructDefaults flattens a struct of default values into a nested map,
// naming keys by their `toml` tag or, failing that, the field name.
// Nested structs become nested maps; nil struct pointers are skipped.
func StructDefaults(structWithDefaults any) (map[string]any, error) {
	v := reflect.ValueOf(structWithDefaults)

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("StructDefaults requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("StructDefaults requires a struct or struct pointer, got %T", structWithDefaults)
	}

	out := make(map[string]any)
	collectFields(v, out)
	return out, nil
}

func collectFields(v reflect.Value, out map[string]any) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		fieldValue := v.Field(i)

		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get(DefaultTagName)
		if tag == "-" {
			continue
		}
		key := sf.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		isStruct := fieldValue.Kind() == reflect.Struct && !isOpaqueStruct(fieldValue.Type())
		isPtrToStruct := fieldValue.Kind() == reflect.Pointer && fieldValue.Type().Elem().Kind() == reflect.Struct &&
			!isOpaqueStruct(fieldValue.Type().Elem())

		if isStruct || isPtrToStruct {
			nested := fieldValue
			if isPtrToStruct {
				if fieldValue.IsNil() {
					continue
				}
				nested = fieldValue.Elem()
			}
			sub := make(map[string]any)
			collectFields(nested, sub)
			out[key] = sub
			continue
		}

		out[key] = fieldValue.Interface()
	}
}

// isOpaqueStruct reports struct types stored as single values rather than tables.
func isOpaqueStruct(t reflect.Type) bool {
	switch t.PkgPath() {
	case "time", "net", "net/url":
		return true
	}
	return false
}
