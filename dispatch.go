// FILE: lixenwraith/varconf/dispatch.go
package varconf

import (
	"fmt"
	"reflect"
)

// codecTable selects an entry for a loader: by instance, then by concrete
// type, then the wildcard. Composite loaders are first narrowed to the
// constituent that holds the key; entries are never keyed on a composite.
type codecTable[F any] struct {
	byLoader    map[Loader]F
	byType      map[reflect.Type]F
	wildcard    F
	hasWildcard bool
}

func newCodecTable[F any]() codecTable[F] {
	return codecTable[F]{
		byLoader: make(map[Loader]F),
		byType:   make(map[reflect.Type]F),
	}
}

func (t *codecTable[F]) pick(src Loader, key Key) (F, Loader, error) {
	target := originOf(src, key)

	// A key no constituent holds comes from the composite's own defaults,
	// or is about to be created. Only the wildcard applies to those.
	if _, ok := target.(*Composite); ok {
		if t.hasWildcard {
			return t.wildcard, target, nil
		}
		var zero F
		return zero, target, fmt.Errorf("%w: %s is held by no constituent of %s", ErrNoCodec, key, target)
	}

	if fn, ok := t.byLoader[target]; ok {
		return fn, target, nil
	}
	if fn, ok := t.byType[reflect.TypeOf(target)]; ok {
		return fn, target, nil
	}
	if t.hasWildcard {
		return t.wildcard, target, nil
	}
	var zero F
	return zero, target, fmt.Errorf("%w: %s (%T) for %s", ErrNoCodec, target, target, key)
}

// originOf narrows a composite, possibly nested, to the constituent holding
// key. Any other loader yields src itself; a key held by no constituent
// yields the innermost composite.
func originOf(src Loader, key Key) Loader {
	for {
		c, ok := src.(*Composite)
		if !ok {
			return src
		}
		origin, err := c.Origin(key)
		if err != nil {
			return src
		}
		src = origin
	}
}

// DecoderTable dispatches decoding on the loader a value came from.
type DecoderTable[T any] struct {
	table codecTable[Decoder[T]]
}

func NewDecoderTable[T any]() *DecoderTable[T] {
	return &DecoderTable[T]{table: newCodecTable[Decoder[T]]()}
}

// On registers fn for every loader with the same concrete type as sample.
// sample may be a typed nil such as (*JSONFile)(nil).
func (d *DecoderTable[T]) On(sample Loader, fn Decoder[T]) *DecoderTable[T] {
	d.table.byType[reflect.TypeOf(sample)] = fn
	return d
}

// For registers fn for one loader instance. It takes precedence over On.
func (d *DecoderTable[T]) For(l Loader, fn Decoder[T]) *DecoderTable[T] {
	d.table.byLoader[l] = fn
	return d
}

// Otherwise registers the wildcard used when nothing else matches.
func (d *DecoderTable[T]) Otherwise(fn Decoder[T]) *DecoderTable[T] {
	d.table.wildcard = fn
	d.table.hasWildcard = fn != nil
	return d
}

func (d *DecoderTable[T]) Decode(src Loader, key Key, raw any) (T, error) {
	fn, target, err := d.table.pick(src, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(target, key, raw)
}

func (d *DecoderTable[T]) Decoder() Decoder[T] {
	return d.Decode
}

// EncoderTable dispatches encoding on the loader a value is written through.
type EncoderTable[T any] struct {
	table codecTable[Encoder[T]]
}

func NewEncoderTable[T any]() *EncoderTable[T] {
	return &EncoderTable[T]{table: newCodecTable[Encoder[T]]()}
}

func (e *EncoderTable[T]) On(sample Loader, fn Encoder[T]) *EncoderTable[T] {
	e.table.byType[reflect.TypeOf(sample)] = fn
	return e
}

func (e *EncoderTable[T]) For(l Loader, fn Encoder[T]) *EncoderTable[T] {
	e.table.byLoader[l] = fn
	return e
}

func (e *EncoderTable[T]) Otherwise(fn Encoder[T]) *EncoderTable[T] {
	e.table.wildcard = fn
	e.table.hasWildcard = fn != nil
	return e
}

func (e *EncoderTable[T]) Encode(src Loader, key Key, value T) (any, error) {
	fn, target, err := e.table.pick(src, key)
	if err != nil {
		return nil, err
	}
	return fn(target, key, value)
}

func (e *EncoderTable[T]) Encoder() Encoder[T] {
	return e.Encode
}
