// File: lixenwraith/varconf/type.go
package varconf

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultTruthy is the token set used by BoolDecoder when none is given.
var DefaultTruthy = []string{"true", "t", "y", "1"}

// BoolDecoder interprets raw values as booleans:
//   - strings are true iff they match one of tokens, ignoring case
//   - bools and numbers are true iff greater than zero
//   - anything else is false
//
// Without tokens, DefaultTruthy is used. Note "yes" is false by default.
func BoolDecoder(tokens ...string) Decoder[bool] {
	if len(tokens) == 0 {
		tokens = DefaultTruthy
	}
	truthy := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		truthy[strings.ToLower(t)] = struct{}{}
	}

	return func(_ Loader, _ Key, raw any) (bool, error) {
		switch v := raw.(type) {
		case json.Number:
			f, err := v.Float64()
			return err == nil && f > 0, nil
		case string:
			_, ok := truthy[strings.ToLower(v)]
			return ok, nil
		}

		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.String:
			_, ok := truthy[strings.ToLower(rv.String())]
			return ok, nil
		case reflect.Bool:
			return rv.Bool(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int() > 0, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return rv.Uint() > 0, nil
		case reflect.Float32, reflect.Float64:
			return rv.Float() > 0, nil
		}
		return false, nil
	}
}

// NewBool creates a bool Var decoding with BoolDecoder(tokens...).
// Options given later may still override the decoder.
func NewBool(key any, tokens []string, opts ...VarOption[bool]) (*Var[bool], error) {
	all := append([]VarOption[bool]{WithDecoder(BoolDecoder(tokens...))}, opts...)
	return NewVar(key, all...)
}

// StringDecoder converts scalars to their string form.
func StringDecoder() Decoder[string] {
	return func(_ Loader, key Key, raw any) (string, error) {
		if raw == nil {
			return "", nil
		}
		if s, ok := raw.(string); ok {
			return s, nil
		}

		switch v := raw.(type) {
		case fmt.Stringer:
			return v.String(), nil
		case []byte:
			return string(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		case error:
			return v.Error(), nil
		}

		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10), nil
		case reflect.Float32, reflect.Float64:
			return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
		case reflect.String:
			return rv.String(), nil
		}
		return "", fmt.Errorf("cannot convert type %T to string for %s", raw, key)
	}
}

// Int64Decoder converts numbers, numeric strings (base prefixes allowed) and
// booleans to int64. Floats are truncated.
func Int64Decoder() Decoder[int64] {
	return func(_ Loader, key Key, raw any) (int64, error) {
		if raw == nil {
			return 0, fmt.Errorf("value for %s is nil, cannot convert to int64", key)
		}
		raw = plainNumber(raw)

		v := reflect.ValueOf(raw)
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return v.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := v.Uint()
			maxInt64 := int64(^uint64(0) >> 1)
			if u > uint64(maxInt64) {
				return 0, fmt.Errorf("cannot convert unsigned integer %d to int64 for %s: overflow", u, key)
			}
			return int64(u), nil
		case reflect.Float32, reflect.Float64:
			return int64(v.Float()), nil
		case reflect.String:
			s := v.String()
			i, err := strconv.ParseInt(s, 0, 64)
			if err == nil {
				return i, nil
			}
			if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
				return int64(f), nil
			}
			return 0, fmt.Errorf("cannot convert string %q to int64 for %s: %w", s, key, err)
		case reflect.Bool:
			if v.Bool() {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("cannot convert type %T to int64 for %s", raw, key)
	}
}

// Float64Decoder converts numbers, numeric strings and booleans to float64.
func Float64Decoder() Decoder[float64] {
	return func(_ Loader, key Key, raw any) (float64, error) {
		if raw == nil {
			return 0, fmt.Errorf("value for %s is nil, cannot convert to float64", key)
		}
		raw = plainNumber(raw)

		v := reflect.ValueOf(raw)
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			return v.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(v.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(v.Uint()), nil
		case reflect.String:
			s := v.String()
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return 0, fmt.Errorf("cannot convert string %q to float64 for %s: %w", s, key, err)
			}
			return f, nil
		case reflect.Bool:
			if v.Bool() {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("cannot convert type %T to float64 for %s", raw, key)
	}
}

// plainNumber turns a json.Number into int64 or float64 so that later
// conversions see a numeric kind rather than a string.
func plainNumber(raw any) any {
	n, ok := raw.(json.Number)
	if !ok {
		return raw
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
