// FILE: lixenwraith/varconf/key.go
package varconf

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// KeySeparator is the path separator accepted by ParseKey and KeyOf.
const KeySeparator = "/"

// keyDisplaySeparator joins segments in Key.String. It is not a parse format.
const keyDisplaySeparator = "[/]"

// Key is an ordered path of string segments locating a value inside nested maps.
// Keys have value semantics: Join and Append always return a fresh key.
type Key struct {
	segments []string
}

// NewKey creates a key from a root segment and optional further segments.
// Segments are taken literally, so they may contain the separator.
func NewKey(root string, next ...string) Key {
	segments := make([]string, 0, 1+len(next))
	segments = append(segments, root)
	segments = append(segments, next...)
	return Key{segments: segments}
}

// ParseKey splits a slash-separated path ("server/tls/cert") into a key.
// Empty paths and empty segments are rejected.
func ParseKey(path string) (Key, error) {
	if path == "" {
		return Key{}, fmt.Errorf("%w: empty path", ErrInvalidKey)
	}
	segments := strings.Split(path, KeySeparator)
	for _, s := range segments {
		if s == "" {
			return Key{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidKey, path)
		}
	}
	return Key{segments: segments}, nil
}

// KeyOf promotes a string, Key or []string into a Key.
func KeyOf(v any) (Key, error) {
	switch k := v.(type) {
	case Key:
		if k.IsZero() {
			return Key{}, fmt.Errorf("%w: zero key", ErrInvalidKey)
		}
		return k, nil
	case *Key:
		if k == nil || k.IsZero() {
			return Key{}, fmt.Errorf("%w: zero key", ErrInvalidKey)
		}
		return *k, nil
	case string:
		return ParseKey(k)
	case []string:
		if len(k) == 0 {
			return Key{}, fmt.Errorf("%w: no segments", ErrInvalidKey)
		}
		return Key{segments: slices.Clone(k)}, nil
	default:
		return Key{}, fmt.Errorf("%w: root must be a string, got %T", ErrInvalidKey, v)
	}
}

// MustKey is like KeyOf but panics on error
func MustKey(v any) Key {
	k, err := KeyOf(v)
	if err != nil {
		panic(err)
	}
	return k
}

// Join returns a new key extended by the given literal segments.
func (k Key) Join(segments ...string) Key {
	out := make([]string, 0, len(k.segments)+len(segments))
	out = append(out, k.segments...)
	out = append(out, segments...)
	return Key{segments: out}
}

// Append returns a new key with all of other's segments after k's.
func (k Key) Append(other Key) Key {
	return k.Join(other.segments...)
}

// Segments returns a copy of the key's segments.
func (k Key) Segments() []string {
	return slices.Clone(k.segments)
}

// All yields the segments in order. The sequence may be ranged over repeatedly.
func (k Key) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, s := range k.segments {
			if !yield(s) {
				return
			}
		}
	}
}

func (k Key) Len() int { return len(k.segments) }

func (k Key) IsZero() bool { return len(k.segments) == 0 }

// Root returns the first segment, or "" for the zero key.
func (k Key) Root() string {
	if k.IsZero() {
		return ""
	}
	return k.segments[0]
}

// Last returns the final segment, or "" for the zero key.
func (k Key) Last() string {
	if k.IsZero() {
		return ""
	}
	return k.segments[len(k.segments)-1]
}

// Parent returns the key without its last segment.
// The parent of a single-segment key is the zero key.
func (k Key) Parent() Key {
	if len(k.segments) <= 1 {
		return Key{}
	}
	return Key{segments: slices.Clone(k.segments[:len(k.segments)-1])}
}

func (k Key) Equal(other Key) bool {
	return slices.Equal(k.segments, other.segments)
}

// String renders the key for diagnostics.
func (k Key) String() string {
	return strings.Join(k.segments, keyDisplaySeparator)
}

// path renders the key in ParseKey form, used for flat listings.
func (k Key) path() string {
	return strings.Join(k.segments, KeySeparator)
}
