// FILE: lixenwraith/varconf/options.go
package varconf

import (
	"log/slog"
)

const (
	// DefaultIndent is the indentation width used when dumping files.
	DefaultIndent = 4

	// MaxFileSize caps the size of a file read by a loader.
	MaxFileSize = 10 << 20
)

// LoaderOption configures a loader at construction time.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	name        string
	defaults    map[string]any
	allowCreate bool
	indent      int
	logger      *slog.Logger
	envPrefix   string
	envKey      EnvTransformFunc
	maxFileSize int64
}

func defaultLoaderOptions() loaderOptions {
	return loaderOptions{
		indent:      DefaultIndent,
		maxFileSize: MaxFileSize,
	}
}

func applyLoaderOptions(opts []LoaderOption) loaderOptions {
	o := defaultLoaderOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithDefaults sets the lower-priority defaults map. Data shadows defaults on lookup.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(o *loaderOptions) {
		o.defaults = defaults
	}
}

// WithAllowCreate lets Set create keys that do not exist yet.
// Without it, writes to undeclared keys fail with ErrKeyNotFound.
func WithAllowCreate() LoaderOption {
	return func(o *loaderOptions) {
		o.allowCreate = true
	}
}

// WithIndent sets the indentation width used by Dump.
func WithIndent(n int) LoaderOption {
	return func(o *loaderOptions) {
		if n >= 0 {
			o.indent = n
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// WithName overrides the identity reported by the loader's String method.
func WithName(name string) LoaderOption {
	return func(o *loaderOptions) {
		o.name = name
	}
}

// WithEnvPrefix restricts an environment loader to variables with the prefix.
// The prefix is stripped from the stored keys.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(o *loaderOptions) {
		o.envPrefix = prefix
	}
}

// WithEnvTransform maps environment variable names to nested keys with fn
// instead of keeping them as flat top-level names.
func WithEnvTransform(fn EnvTransformFunc) LoaderOption {
	return func(o *loaderOptions) {
		o.envKey = fn
	}
}

// WithMaxFileSize overrides MaxFileSize. Zero disables the limit.
func WithMaxFileSize(n int64) LoaderOption {
	return func(o *loaderOptions) {
		if n >= 0 {
			o.maxFileSize = n
		}
	}
}
