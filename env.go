// FILE: lixenwraith/varconf/env.go
package varconf

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// EnvTransformFunc maps an environment variable name, with the prefix
// already stripped, to the key it populates. Returning false skips the variable.
type EnvTransformFunc func(name string) (Key, bool)

// DefaultEnvTransform lowercases name and splits it on underscores, so
// SERVER_PORT populates server/port. Names with empty segments are skipped.
func DefaultEnvTransform(name string) (Key, bool) {
	segments := strings.Split(strings.ToLower(name), "_")
	if slices.Contains(segments, "") {
		return Key{}, false
	}
	return Key{segments: segments}, true
}

// EnvLoader exposes process environment variables as a map of strings.
// Without a transform every variable is a top-level key named as in the
// environment.
type EnvLoader struct {
	store
	prefix string
	nested bool
}

// LoadEnv snapshots the environment. With WithEnvPrefix, only variables
// carrying the prefix are kept and the prefix is stripped from their keys.
// With WithEnvTransform, names are mapped to nested keys; a variable whose
// key collides with one already loaded is skipped.
func LoadEnv(opts ...LoaderOption) *EnvLoader {
	o := applyLoaderOptions(opts)
	env := make(map[string]string)
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			continue
		}
		if o.envPrefix != "" {
			trimmed, found := strings.CutPrefix(name, o.envPrefix)
			if !found || trimmed == "" {
				continue
			}
			name = trimmed
		}
		env[name] = value
	}

	data := make(map[string]any, len(env))
	e := &EnvLoader{store: newStore("env", o.envPrefix, data, o), prefix: o.envPrefix, nested: o.envKey != nil}
	for _, name := range sortedKeys(env) {
		if o.envKey == nil {
			data[name] = env[name]
			continue
		}
		key, ok := o.envKey(name)
		if !ok || key.IsZero() {
			continue
		}
		if _, exists := lookupNested(data, key.segments); exists || !setNested(data, key.segments, env[name]) {
			e.logger().Debug("environment variable skipped",
				slog.String("name", o.envPrefix+name),
				slog.String("key", key.String()))
		}
	}
	return e
}

// Dump exports the values back into the process environment, re-applying
// the prefix. Flat loaders export their top-level keys as named; nested ones
// export every leaf as the upper-cased path joined by underscores, the
// inverse of DefaultEnvTransform. Nothing is set unless every value converts.
func (e *EnvLoader) Dump(includeDefaults bool) error {
	snapshot := e.snapshot(includeDefaults)
	if e.nested {
		snapshot = flattenMap(snapshot, "")
	}
	pending := make(map[string]string, len(snapshot))
	for _, name := range sortedKeys(snapshot) {
		value, err := envString(snapshot[name])
		if err != nil {
			return fmt.Errorf("failed to export %s from %s: %w", name, e, err)
		}
		pending[e.envName(name)] = value
	}
	for _, name := range sortedKeys(pending) {
		if err := os.Setenv(name, pending[name]); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}
	e.logger().Debug("environment exported", slog.String("loader", e.String()), slog.Int("count", len(pending)))
	return nil
}

func (e *EnvLoader) envName(path string) string {
	if !e.nested {
		return e.prefix + path
	}
	return e.prefix + strings.ToUpper(strings.ReplaceAll(path, KeySeparator, "_"))
}

// envString renders scalars directly and everything else as JSON.
func envString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case fmt.Stringer:
		return t.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}

	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
