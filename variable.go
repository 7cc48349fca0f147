// FILE: lixenwraith/varconf/variable.go
package varconf

import (
	"errors"
	"fmt"
	"log/slog"
)

// Decoder converts a raw loader value into T. src is the loader the value
// came from; for composite sources, tables resolve it to the originating constituent.
type Decoder[T any] func(src Loader, key Key, raw any) (T, error)

// Encoder converts T into the raw form stored through src.
type Encoder[T any] func(src Loader, key Key, value T) (any, error)

// Validator rejects a decoded value by returning an error, typically a *ValidationError.
type Validator[T any] func(value T) error

type defaultState uint8

const (
	defaultNone defaultState = iota
	defaultValid
	defaultInvalid
)

// Var is a typed handle on the value stored at a key of a loader.
//
// A Var goes from unbound to bound when given a loader, and is resolved at
// the same time: the raw value is decoded and validated, falling back to the
// default if either step fails. Set validates, stores, encodes and writes
// the value back, restoring the previous value if any step fails.
type Var[T any] struct {
	key      Key
	declared Loader
	source   Loader
	owner    *Config

	def      T
	defState defaultState
	defErr   error

	value    T
	resolved bool
	constant bool

	decode   Decoder[T]
	encode   Encoder[T]
	validate Validator[T]
}

// VarOption configures a Var.
type VarOption[T any] func(*Var[T])

// WithDefault sets the value used when the key is missing or its value is rejected.
func WithDefault[T any](value T) VarOption[T] {
	return func(v *Var[T]) {
		v.def = value
		v.defState = defaultValid
	}
}

// WithValidator sets the validator. nil accepts everything.
func WithValidator[T any](fn Validator[T]) VarOption[T] {
	return func(v *Var[T]) {
		v.validate = fn
	}
}

func WithDecoder[T any](fn Decoder[T]) VarOption[T] {
	return func(v *Var[T]) {
		if fn != nil {
			v.decode = fn
		}
	}
}

func WithEncoder[T any](fn Encoder[T]) VarOption[T] {
	return func(v *Var[T]) {
		if fn != nil {
			v.encode = fn
		}
	}
}

// WithDecoderTable decodes through a loader-specific dispatch table.
func WithDecoderTable[T any](table *DecoderTable[T]) VarOption[T] {
	return WithDecoder(table.Decoder())
}

// WithEncoderTable encodes through a loader-specific dispatch table.
func WithEncoderTable[T any](table *EncoderTable[T]) VarOption[T] {
	return WithEncoder(table.Encoder())
}

// WithLoader binds the Var to l instead of the loader its config is built with.
func WithLoader[T any](l Loader) VarOption[T] {
	return func(v *Var[T]) {
		v.declared = l
	}
}

// Constant makes the Var reject every Set once resolved.
func Constant[T any]() VarOption[T] {
	return func(v *Var[T]) {
		v.constant = true
	}
}

// NewVar creates a Var at key, which may be a string path, Key or []string.
// The default, if any, is validated here. With WithLoader the Var is bound
// and resolved before returning.
func NewVar[T any](key any, opts ...VarOption[T]) (*Var[T], error) {
	v, err := newVar(key, opts)
	if err != nil {
		return nil, err
	}
	if v.declared != nil {
		if err := v.Bind(v.declared); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// MustVar is like NewVar but panics on error
func MustVar[T any](key any, opts ...VarOption[T]) *Var[T] {
	v, err := NewVar(key, opts...)
	if err != nil {
		panic(fmt.Sprintf("variable creation failed: %v", err))
	}
	return v
}

func newVar[T any](key any, opts []VarOption[T]) (*Var[T], error) {
	k, err := KeyOf(key)
	if err != nil {
		return nil, err
	}
	v := &Var[T]{
		key:    k,
		decode: DefaultDecoder[T](),
		encode: DefaultEncoder[T](),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.defState == defaultValid {
		if err := v.check(v.def); err != nil {
			v.defState = defaultInvalid
			v.defErr = &InvalidValueError{Key: v.key, Value: v.def, Err: err}
			return nil, fmt.Errorf("invalid default: %w", v.defErr)
		}
	}
	return v, nil
}

// DefaultDecoder returns raw unchanged when it already is a T and otherwise
// converts it with weakly typed decoding.
func DefaultDecoder[T any]() Decoder[T] {
	return func(_ Loader, _ Key, raw any) (T, error) {
		if value, ok := raw.(T); ok {
			return value, nil
		}
		var out T
		if err := decodeValue(plainNumber(raw), &out, DefaultTagName); err != nil {
			return out, err
		}
		return out, nil
	}
}

// DefaultEncoder stores values unchanged.
func DefaultEncoder[T any]() Encoder[T] {
	return func(_ Loader, _ Key, value T) (any, error) {
		return value, nil
	}
}

// Bind attaches the Var to l and resolves it.
func (v *Var[T]) Bind(l Loader) error {
	if err := v.checkFrozen(); err != nil {
		return err
	}
	if isNilLoader(l) {
		return fmt.Errorf("%w: cannot bind %s to nil loader", ErrInvalidLoader, v.key)
	}
	v.source = l
	v.resolved = false
	return v.resolve()
}

// resolve reads the raw value and falls back to the default when the key is
// missing or the value is rejected.
func (v *Var[T]) resolve() error {
	raw, err := v.source.Lookup(v.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) && v.defState == defaultValid {
			v.commit(v.def)
			return nil
		}
		return err
	}

	value, err := v.decodeChecked(raw)
	if err == nil {
		v.commit(value)
		return nil
	}

	if v.defState == defaultValid {
		v.logger().Info("value rejected, using default",
			slog.String("key", v.key.String()),
			slog.String("loader", v.origin().String()),
			slog.Any("error", err))
		v.commit(v.def)
		return nil
	}

	// The loader's own defaults are the last resort
	if fallback, ok := v.loaderDefault(); ok {
		v.logger().Info("value rejected, using loader default",
			slog.String("key", v.key.String()),
			slog.String("loader", v.origin().String()),
			slog.Any("error", err))
		v.commit(fallback)
		return nil
	}

	if v.defState == defaultInvalid {
		return errors.Join(err, v.defErr)
	}
	return err
}

// loaderDefault decodes and validates the value the bound loader's defaults
// hold for the key, if any.
func (v *Var[T]) loaderDefault() (T, bool) {
	raw, ok := lookupNested(v.source.Defaults(), v.key.segments)
	if !ok {
		var zero T
		return zero, false
	}
	value, err := v.decodeChecked(raw)
	if err != nil {
		var zero T
		return zero, false
	}
	return value, true
}

func (v *Var[T]) commit(value T) {
	v.value = value
	v.resolved = true
}

// decodeChecked decodes and validates raw, wrapping failures with the key and loader.
func (v *Var[T]) decodeChecked(raw any) (T, error) {
	value, err := v.decode(v.source, v.key, raw)
	if err != nil {
		return value, &InvalidValueError{Key: v.key, Loader: v.origin().String(), Value: raw, Err: err}
	}
	if err := v.check(value); err != nil {
		return value, &InvalidValueError{Key: v.key, Loader: v.origin().String(), Value: raw, Err: err}
	}
	return value, nil
}

func (v *Var[T]) check(value T) error {
	if v.validate == nil {
		return nil
	}
	return v.validate(value)
}

// origin returns the constituent holding the key when bound to a composite.
func (v *Var[T]) origin() Loader {
	return originOf(v.source, v.key)
}

// Value returns the live value. Before resolution it returns the default, if
// there is one, without storing it.
func (v *Var[T]) Value() (T, error) {
	if v.resolved {
		return v.value, nil
	}
	if v.defState == defaultValid {
		return v.def, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", ErrUnresolved, v.key)
}

// Get is Value without the error.
func (v *Var[T]) Get() T {
	value, _ := v.Value()
	return value
}

// Default returns the declared default and whether there is one.
func (v *Var[T]) Default() (T, bool) {
	return v.def, v.defState == defaultValid
}

// Set validates x, makes it the live value and writes its encoded form to the
// bound loader. On failure the previous value is kept.
func (v *Var[T]) Set(x T) error {
	if v.constant && v.resolved {
		return fmt.Errorf("%w: %s is constant", ErrImmutable, v.key)
	}
	if err := v.checkFrozen(); err != nil {
		return err
	}
	if v.source == nil {
		return fmt.Errorf("%w: %s is not bound", ErrUnresolved, v.key)
	}
	if err := v.check(x); err != nil {
		return &InvalidValueError{Key: v.key, Loader: v.origin().String(), Value: x, Err: err}
	}

	prev, prevResolved := v.value, v.resolved
	rollback := func() {
		v.value, v.resolved = prev, prevResolved
	}

	v.commit(x)
	raw, err := v.encode(v.source, v.key, x)
	if err != nil {
		rollback()
		return fmt.Errorf("failed to encode %s for %s: %w", v.key, v.source, err)
	}
	if err := v.source.Set(v.key, raw); err != nil {
		rollback()
		return err
	}
	return nil
}

// Serialize encodes the live value for the bound loader.
func (v *Var[T]) Serialize() (any, error) {
	if !v.resolved || v.source == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolved, v.key)
	}
	return v.encode(v.source, v.key, v.value)
}

// SetValidator replaces the validator after checking the live value and the
// default against it. If either fails, the old validator stays.
func (v *Var[T]) SetValidator(fn Validator[T]) error {
	if err := v.checkFrozen(); err != nil {
		return err
	}
	if fn != nil {
		if v.resolved {
			if err := fn(v.value); err != nil {
				return &InvalidValueError{Key: v.key, Loader: v.loaderName(), Value: v.value, Err: err}
			}
		}
		if v.defState == defaultValid {
			if err := fn(v.def); err != nil {
				return &InvalidValueError{Key: v.key, Value: v.def, Err: fmt.Errorf("default: %w", err)}
			}
		}
	}
	v.validate = fn
	return nil
}

// SetDecoder replaces the decoder and re-resolves a bound Var with it. If
// re-resolution fails, the old decoder and value are restored.
func (v *Var[T]) SetDecoder(fn Decoder[T]) error {
	if err := v.checkFrozen(); err != nil {
		return err
	}
	if fn == nil {
		fn = DefaultDecoder[T]()
	}
	prevDecode, prevValue, prevResolved := v.decode, v.value, v.resolved
	v.decode = fn
	if v.source == nil {
		return nil
	}
	if err := v.resolve(); err != nil {
		v.decode, v.value, v.resolved = prevDecode, prevValue, prevResolved
		return err
	}
	return nil
}

func (v *Var[T]) SetEncoder(fn Encoder[T]) error {
	if err := v.checkFrozen(); err != nil {
		return err
	}
	if fn == nil {
		fn = DefaultEncoder[T]()
	}
	v.encode = fn
	return nil
}

// checkFrozen rejects every mutation while the owning config is frozen.
func (v *Var[T]) checkFrozen() error {
	if v.owner != nil && v.owner.Frozen() {
		return fmt.Errorf("%w: %s belongs to frozen config %s", ErrImmutable, v.key, v.owner.Name())
	}
	return nil
}

func (v *Var[T]) Key() Key { return v.key }

// Source returns the bound loader, or nil.
func (v *Var[T]) Source() Loader { return v.source }

func (v *Var[T]) Resolved() bool { return v.resolved }

func (v *Var[T]) IsConstant() bool { return v.constant }

func (v *Var[T]) String() string {
	return fmt.Sprintf("Var(%s)", v.key)
}

func (v *Var[T]) loaderName() string {
	if v.source == nil {
		return ""
	}
	return v.origin().String()
}

func (v *Var[T]) logger() *slog.Logger {
	if v.owner != nil {
		return v.owner.logger
	}
	return slog.Default()
}

// snapshot reports the live value for Config.Snapshot.
func (v *Var[T]) snapshot() (any, bool) {
	if !v.resolved {
		return nil, false
	}
	return v.value, true
}

func (v *Var[T]) declaredLoader() Loader { return v.declared }
