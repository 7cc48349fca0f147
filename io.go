// FILE: lixenwraith/varconf/io.go
package varconf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names a file encoding understood by Open.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat determines the format from the file extension.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML, true
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Open loads path with the read-write loader matching its extension.
func Open(path string, opts ...LoaderOption) (Loader, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, &SourceError{Source: path, Err: fmt.Errorf("unable to determine format from extension %q", filepath.Ext(path))}
	}
	switch format {
	case FormatJSON:
		return LoadJSONFile(path, opts...)
	case FormatYAML:
		return LoadYAMLFile(path, opts...)
	default:
		return LoadTOMLFile(path, opts...)
	}
}

// Create returns an empty read-write loader for path without reading it.
// Nothing is written until Dump, which makes it a target for DumpTo.
func Create(path string, opts ...LoaderOption) (Loader, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, &SourceError{Source: path, Err: fmt.Errorf("unable to determine format from extension %q", filepath.Ext(path))}
	}
	o := applyLoaderOptions(opts)
	switch format {
	case FormatJSON:
		return &JSONFile{store: newStore("json", path, nil, o), path: path}, nil
	case FormatYAML:
		return &YAMLFile{store: newStore("yaml", path, nil, o), path: path}, nil
	default:
		return &TOMLFile{store: newStore("toml", path, nil, o), path: path}, nil
	}
}

// readSource reads a whole file, enforcing the size limit.
func readSource(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &SourceError{Source: path, Err: err}
		}
		return nil, &SourceError{Source: path, Err: fmt.Errorf("failed to stat file: %w", err)}
	}
	if info.IsDir() {
		return nil, &SourceError{Source: path, Err: errors.New("is a directory")}
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, &SourceError{Source: path, Err: fmt.Errorf("file exceeds maximum size %d bytes", maxSize)}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Source: path, Err: err}
	}
	defer file.Close()

	var reader io.Reader = file
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &SourceError{Source: path, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	return data, nil
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over path.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // no-op after a successful rename

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
