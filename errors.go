// FILE: lixenwraith/varconf/errors.go
package varconf

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by loaders, variables and configs.
var (
	// ErrKeyNotFound indicates a lookup, write or delete missed at some segment.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidValue indicates a value, or its fallback default, failed to decode or validate.
	ErrInvalidValue = errors.New("invalid value")

	// ErrValidation is the inner failure produced by validators.
	ErrValidation = errors.New("validation failed")

	// ErrImmutable indicates a write to a constant variable or a frozen config.
	ErrImmutable = errors.New("immutable assignment")

	// ErrInvalidSource indicates unparsable or structurally wrong loader input.
	ErrInvalidSource = errors.New("invalid source")

	// ErrUnsupported indicates the loader cannot perform the operation.
	ErrUnsupported = errors.New("unsupported operation")

	ErrInvalidKey    = errors.New("invalid key")
	ErrInvalidLoader = errors.New("invalid loader")

	// ErrNoCodec indicates a dispatch table has no entry for a loader and no wildcard.
	ErrNoCodec = errors.New("no codec for loader")

	// ErrUnresolved indicates a read of a variable that has neither a value nor a default.
	ErrUnresolved = errors.New("variable not resolved")

	// ErrSealed indicates a declaration on a schema that has already built a config.
	ErrSealed = errors.New("schema sealed")

	// ErrForeignField indicates a field used with a config built from another schema.
	ErrForeignField = errors.New("field not declared in config schema")
)

// KeyNotFoundError carries the full key attempted and, for composite loaders,
// every constituent that was tried.
type KeyNotFoundError struct {
	Key     Key
	Loaders []string
}

func (e *KeyNotFoundError) Error() string {
	if len(e.Loaders) == 0 {
		return fmt.Sprintf("key not found: %s", e.Key)
	}
	return fmt.Sprintf("key not found: %s (tried %s)", e.Key, strings.Join(e.Loaders, ", "))
}

func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// ValidationError is returned by validators to explain a rejection.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError with a formatted reason.
func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InvalidValueError identifies the variable and loader involved in a failed
// decode or validation. Err holds the inner failure.
type InvalidValueError struct {
	Key    Key
	Loader string
	Value  any
	Err    error
}

func (e *InvalidValueError) Error() string {
	loader := e.Loader
	if loader == "" {
		loader = "<unbound>"
	}
	return fmt.Sprintf("%s got invalid value %v from %s: %v", e.Key, e.Value, loader, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// SourceError is returned when a loader cannot read or parse its medium.
// It matches ErrInvalidSource as well as the underlying cause.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("invalid source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrInvalidSource, e.Err}
}

// loaderNames returns diagnostic names for a set of loaders.
func loaderNames(loaders []Loader) []string {
	names := make([]string, len(loaders))
	for i, l := range loaders {
		names[i] = l.String()
	}
	return names
}
