// FILE: lixenwraith/varconf/toml.go
package varconf

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// TOMLFile is a read-write loader backed by a TOML document on disk.
type TOMLFile struct {
	store
	path string
}

// LoadTOMLFile reads and parses the TOML document at path.
func LoadTOMLFile(path string, opts ...LoaderOption) (*TOMLFile, error) {
	o := applyLoaderOptions(opts)
	data, err := readTOML(path, o)
	if err != nil {
		return nil, err
	}
	return &TOMLFile{store: newStore("toml", path, data, o), path: path}, nil
}

func (t *TOMLFile) Path() string { return t.path }

func (t *TOMLFile) Dump(includeDefaults bool) error {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = strings.Repeat(" ", t.opts.indent)
	if err := encoder.Encode(t.snapshot(includeDefaults)); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", t, err)
	}
	if err := atomicWriteFile(t.path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to dump %s: %w", t, err)
	}
	t.logger().Debug("loader dumped", slog.String("loader", t.String()), slog.Bool("defaults", includeDefaults))
	return nil
}

// TOMLReadOnly reads a TOML document but refuses to persist it.
// Values may still be changed in memory.
type TOMLReadOnly struct {
	store
	path string
}

// LoadTOMLReadOnly reads and parses the TOML document at path.
func LoadTOMLReadOnly(path string, opts ...LoaderOption) (*TOMLReadOnly, error) {
	o := applyLoaderOptions(opts)
	data, err := readTOML(path, o)
	if err != nil {
		return nil, err
	}
	return &TOMLReadOnly{store: newStore("toml-ro", path, data, o), path: path}, nil
}

func (t *TOMLReadOnly) Path() string { return t.path }

// Dump always fails with ErrUnsupported.
func (t *TOMLReadOnly) Dump(includeDefaults bool) error {
	return fmt.Errorf("%w: %s is read-only", ErrUnsupported, t)
}

func readTOML(path string, o loaderOptions) (map[string]any, error) {
	raw, err := readSource(path, o.maxFileSize)
	if err != nil {
		return nil, err
	}
	data := make(map[string]any)
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, &SourceError{Source: path, Err: fmt.Errorf("failed to parse TOML: %w", err)}
	}
	return data, nil
}
