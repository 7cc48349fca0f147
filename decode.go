// FILE: lixenwraith/varconf/decode.go
package varconf

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DefaultTagName is the struct tag read by StructDefaults and Config.Scan.
const DefaultTagName = "toml"

// decodeValue is the single weakly typed conversion used by the default
// decoder and by Config.Scan. target must be a non-nil pointer.
func decodeValue(input any, target any, tagName string) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be non-nil pointer, got %T", target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("cannot convert %T to %s: %w", input, rv.Elem().Type(), err)
	}
	return nil
}

// decodeHook returns the composite decode hook for all type conversions
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringParseHook converts strings into target, or into *target when the
// destination is a pointer. parse returns a pointer to a target value.
func stringParseHook(target reflect.Type, maxLen int, parse func(string) (any, error)) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Pointer
		if t != target && !(isPtr && t.Elem() == target) {
			return data, nil
		}

		str := reflect.ValueOf(data).String()
		if len(str) > maxLen {
			return nil, fmt.Errorf("%s too long: %d bytes", target, len(str))
		}
		parsed, err := parse(str)
		if err != nil {
			return nil, err
		}
		if isPtr {
			return parsed, nil
		}
		return reflect.ValueOf(parsed).Elem().Interface(), nil
	}
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := reflect.ValueOf(data).String()
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}
		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}
		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	// Max IPv6 CIDR length
	return stringParseHook(reflect.TypeOf(net.IPNet{}), 49, func(s string) (any, error) {
		_, ipnet, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		return ipnet, nil
	})
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return stringParseHook(reflect.TypeOf(url.URL{}), 2048, func(s string) (any, error) {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		return u, nil
	})
}
