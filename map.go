// FILE: lixenwraith/varconf/map.go
package varconf

// MapLoader serves values straight from an in-memory map.
type MapLoader struct {
	store
}

// NewMap wraps data in place: writes through the loader are visible in data
// as long as data was non-nil. Dump is a no-op since the map is the medium.
func NewMap(data map[string]any, opts ...LoaderOption) *MapLoader {
	return &MapLoader{store: newStore("map", "", data, applyLoaderOptions(opts))}
}

// Dump does nothing.
func (m *MapLoader) Dump(includeDefaults bool) error {
	return nil
}
