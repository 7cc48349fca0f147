// FILE: lixenwraith/varconf/args.go
package varconf

import (
	"fmt"
	"strings"
)

// ArgsLoader exposes command-line flags of the form --a.b=value, --a.b value
// or a bare --flag (true) as nested values. Flags are transient input, so
// Dump does nothing.
type ArgsLoader struct {
	store
}

// LoadArgs parses args. Non-flag arguments are skipped.
func LoadArgs(args []string, opts ...LoaderOption) (*ArgsLoader, error) {
	data, err := parseArgs(args)
	if err != nil {
		return nil, &SourceError{Source: "args", Err: err}
	}
	return &ArgsLoader{store: newStore("args", "", data, applyLoaderOptions(opts))}, nil
}

// Dump does nothing.
func (a *ArgsLoader) Dump(includeDefaults bool) error {
	return nil
}

// parseArgs processes command-line arguments into a nested map structure.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			i++
			continue
		}

		content := strings.TrimPrefix(arg, "--")
		if content == "" {
			// "--" separator
			i++
			continue
		}

		var keyPath, valueStr string
		if name, value, ok := strings.Cut(content, "="); ok {
			keyPath, valueStr = name, value
			i++
		} else {
			keyPath = content
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if keyPath == "" {
			continue
		}

		segments := strings.Split(keyPath, ".")
		for _, segment := range segments {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		if !setNested(result, segments, parseValue(valueStr)) {
			return nil, fmt.Errorf("flag %q conflicts with an earlier flag", keyPath)
		}
	}

	return result, nil
}

// parseValue converts boolean literals and strips surrounding quotes.
// Other conversions are left to the variable's decoder.
func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// isValidKeySegment reports whether s is a bare key: ASCII letters, digits, '_' and '-'.
func isValidKeySegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
