// FILE: lixenwraith/varconf/yaml.go
package varconf

import (
	"bytes"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// YAMLFile is a read-write loader backed by a YAML document on disk.
type YAMLFile struct {
	store
	path string
}

// LoadYAMLFile reads and parses the YAML mapping at path.
func LoadYAMLFile(path string, opts ...LoaderOption) (*YAMLFile, error) {
	o := applyLoaderOptions(opts)
	raw, err := readSource(path, o.maxFileSize)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, &SourceError{Source: path, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}
	normalizeValue(data)
	return &YAMLFile{store: newStore("yaml", path, data, o), path: path}, nil
}

func (y *YAMLFile) Path() string { return y.path }

func (y *YAMLFile) Dump(includeDefaults bool) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(y.opts.indent)
	// The snapshot is a copy, so numbers can be rewritten in place
	if err := encoder.Encode(normalizeNumbers(y.snapshot(includeDefaults))); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", y, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to marshal %s: %w", y, err)
	}
	if err := atomicWriteFile(y.path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to dump %s: %w", y, err)
	}
	y.logger().Debug("loader dumped", slog.String("loader", y.String()), slog.Bool("defaults", includeDefaults))
	return nil
}
