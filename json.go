// FILE: lixenwraith/varconf/json.go
package varconf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// JSONFile is a read-write loader backed by a JSON document on disk.
type JSONFile struct {
	store
	path string
}

// LoadJSONFile reads and parses the JSON object at path.
func LoadJSONFile(path string, opts ...LoaderOption) (*JSONFile, error) {
	o := applyLoaderOptions(opts)
	raw, err := readSource(path, o.maxFileSize)
	if err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, &SourceError{Source: path, Err: err}
	}
	return &JSONFile{store: newStore("json", path, data, o), path: path}, nil
}

func (j *JSONFile) Path() string { return j.path }

// Dump writes the document atomically. Keys are sorted, so dumping an
// unchanged loader produces identical bytes.
func (j *JSONFile) Dump(includeDefaults bool) error {
	out, err := encodeJSON(j.snapshot(includeDefaults), j.opts.indent)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", j, err)
	}
	if err := atomicWriteFile(j.path, out); err != nil {
		return fmt.Errorf("failed to dump %s: %w", j, err)
	}
	j.logger().Debug("loader dumped", slog.String("loader", j.String()), slog.Bool("defaults", includeDefaults))
	return nil
}

// JSONString is a loader over a JSON document held in memory.
// Dump re-renders the document, available afterwards through Text.
type JSONString struct {
	store
	text string
}

// LoadJSONString parses text as a JSON object.
func LoadJSONString(text string, opts ...LoaderOption) (*JSONString, error) {
	data, err := decodeJSON([]byte(text))
	if err != nil {
		return nil, &SourceError{Source: "json string", Err: err}
	}
	return &JSONString{store: newStore("json-string", "", data, applyLoaderOptions(opts)), text: text}, nil
}

// Text returns the document as of construction or the last Dump.
func (j *JSONString) Text() string { return j.text }

func (j *JSONString) Dump(includeDefaults bool) error {
	out, err := encodeJSON(j.snapshot(includeDefaults), j.opts.indent)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", j, err)
	}
	j.text = string(out)
	return nil
}

func decodeJSON(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return make(map[string]any), nil
	}
	var data map[string]any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber() // Preserve number precision
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to parse JSON: unexpected content after document")
	}
	return data, nil
}

func encodeJSON(data map[string]any, indent int) ([]byte, error) {
	var out []byte
	var err error
	if indent > 0 {
		out, err = json.MarshalIndent(data, "", strings.Repeat(" ", indent))
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
