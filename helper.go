// File: lixenwraith/varconf/helper.go
package varconf

import (
	"fmt"
	"maps"
	"slices"
)

// cloneValue deep-copies nested maps and slices. Leaf values are shared.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// cloneMap deep-copies m. A nil map yields an empty map.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// mergeMaps returns a new map holding base overlaid by over.
// Nested maps present on both sides are merged recursively; anything else in over wins.
func mergeMaps(base, over map[string]any) map[string]any {
	out := cloneMap(base)
	for k, v := range over {
		if overMap, ok := v.(map[string]any); ok {
			if baseMap, ok := out[k].(map[string]any); ok {
				out[k] = mergeMaps(baseMap, overMap)
				continue
			}
		}
		out[k] = cloneValue(v)
	}
	return out
}

// lookupNested follows segments through nested maps.
func lookupNested(m map[string]any, segments []string) (any, bool) {
	var current any = m
	for _, segment := range segments {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil, false
		}
		current = value
	}
	return current, true
}

// layeredLookup resolves segments against data shadowing defaults at every depth.
// A non-map value in data hides whatever defaults holds beneath it.
func layeredLookup(data, defaults map[string]any, segments []string) (any, bool) {
	head, rest := segments[0], segments[1:]
	dv, inData := data[head]
	fv, inDefaults := defaults[head]

	if len(rest) == 0 {
		if inData {
			dm, dIsMap := dv.(map[string]any)
			fm, fIsMap := fv.(map[string]any)
			if dIsMap && fIsMap {
				return mergeMaps(fm, dm), true
			}
			return dv, true
		}
		return fv, inDefaults
	}

	if inData {
		dm, ok := dv.(map[string]any)
		if !ok {
			return nil, false
		}
		fm, _ := fv.(map[string]any)
		return layeredLookup(dm, fm, rest)
	}
	if fm, ok := fv.(map[string]any); ok {
		return lookupNested(fm, rest)
	}
	return nil, false
}

// setNested sets the value at segments, creating intermediate maps as needed.
// It fails without modifying m if an intermediate segment holds a non-map value.
func setNested(m map[string]any, segments []string, value any) bool {
	current := m
	for i, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if !exists {
			// Build the missing branch detached, then attach it in one step
			branch := make(map[string]any)
			setNested(branch, segments[i+1:], value)
			current[segment] = branch
			return true
		}
		nextMap, isMap := next.(map[string]any)
		if !isMap {
			return false
		}
		current = nextMap
	}
	current[segments[len(segments)-1]] = value
	return true
}

// deleteNested removes the entry at segments.
func deleteNested(m map[string]any, segments []string) bool {
	parent, ok := lookupNested(m, segments[:len(segments)-1])
	if !ok {
		return false
	}
	parentMap, ok := parent.(map[string]any)
	if !ok {
		return false
	}
	last := segments[len(segments)-1]
	if _, exists := parentMap[last]; !exists {
		return false
	}
	delete(parentMap, last)
	return true
}

// flattenMap converts a nested map to a flat map keyed by slash paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + KeySeparator + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap && len(nestedMap) > 0 {
			maps.Copy(flat, flattenMap(nestedMap, newPath))
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// Paths lists the slash path of every leaf in nested, sorted.
func Paths(nested map[string]any) []string {
	return sortedKeys(flattenMap(nested, ""))
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// normalizeNumbers replaces json.Number leaves with int64 or float64 in place,
// for encoders that would otherwise write them as strings.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return plainNumber(v)
	}
}

// normalizeValue rewrites maps with non-string keys, as produced by some
// YAML documents, into map[string]any.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeValue(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeValue(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}
