// File: lixenwraith/varconf/builder.go
package varconf

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Builder provides a fluent interface for assembling a Composite from the
// usual sources. Priority, highest first: command-line args, environment,
// files (later files over earlier ones), extra loaders, then defaults.
type Builder struct {
	defaults   map[string]any
	args       []string
	useArgs    bool
	envPrefix  string
	useEnv     bool
	envKey     EnvTransformFunc
	files      []builderFile
	extra      []Loader
	loaderOpts []LoaderOption
	logger     *slog.Logger
	err        error
}

type builderFile struct {
	path     string
	optional bool
}

// NewBuilder creates a new builder
func NewBuilder() *Builder {
	return &Builder{logger: slog.Default(), envKey: DefaultEnvTransform}
}

// WithDefaults sets the defaults: a map[string]any, or a struct (or struct
// pointer) flattened by StructDefaults.
func (b *Builder) WithDefaults(defaults any) *Builder {
	switch d := defaults.(type) {
	case nil:
		b.defaults = nil
	case map[string]any:
		b.defaults = d
	default:
		m, err := StructDefaults(d)
		if err != nil {
			b.err = errors.Join(b.err, fmt.Errorf("failed to register defaults: %w", err))
			return b
		}
		b.defaults = m
	}
	return b
}

// WithEnvPrefix includes environment variables starting with prefix.
// Names map to keys through DefaultEnvTransform unless WithEnvTransform
// says otherwise: APP_SERVER_PORT overrides server/port for prefix APP_.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	b.useEnv = true
	return b
}

// WithEnvTransform sets a custom environment variable transformer.
// nil keeps variable names as flat top-level keys.
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.envKey = fn
	return b
}

// WithArgs includes --key=value flags parsed from args.
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	b.useArgs = true
	return b
}

// WithFile adds a file that must exist. The format follows the extension.
func (b *Builder) WithFile(path string) *Builder {
	b.files = append(b.files, builderFile{path: path})
	return b
}

// WithOptionalFile adds a file that is skipped when missing.
func (b *Builder) WithOptionalFile(path string) *Builder {
	b.files = append(b.files, builderFile{path: path, optional: true})
	return b
}

// WithLoader adds a custom loader below the files.
func (b *Builder) WithLoader(l Loader) *Builder {
	if isNilLoader(l) {
		b.err = errors.Join(b.err, fmt.Errorf("%w: nil loader", ErrInvalidLoader))
		return b
	}
	b.extra = append(b.extra, l)
	return b
}

// WithLoaderOptions applies opts to every loader the builder opens.
func (b *Builder) WithLoaderOptions(opts ...LoaderOption) *Builder {
	b.loaderOpts = append(b.loaderOpts, opts...)
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
		b.loaderOpts = append(b.loaderOpts, WithLogger(logger))
	}
	return b
}

// Build opens every source and returns them as one Composite.
func (b *Builder) Build() (*Composite, error) {
	if b.err != nil {
		return nil, b.err
	}

	var loaders []Loader

	if b.useArgs {
		args, err := LoadArgs(b.args, b.loaderOpts...)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, args)
	}

	if b.useEnv {
		opts := append(b.loaderOpts[:len(b.loaderOpts):len(b.loaderOpts)], WithEnvPrefix(b.envPrefix), WithEnvTransform(b.envKey))
		loaders = append(loaders, LoadEnv(opts...))
	}

	for i := len(b.files) - 1; i >= 0; i-- {
		f := b.files[i]
		l, err := Open(f.path, b.loaderOpts...)
		if err != nil {
			if f.optional && errors.Is(err, fs.ErrNotExist) {
				b.logger.Debug("optional config file not found", slog.String("path", f.path))
				continue
			}
			return nil, err
		}
		loaders = append(loaders, l)
	}

	loaders = append(loaders, b.extra...)

	if len(loaders) == 0 {
		// Defaults alone still need a constituent to receive writes
		loaders = append(loaders, NewMap(nil, b.loaderOpts...))
	}

	opts := append(b.loaderOpts[:len(b.loaderOpts):len(b.loaderOpts)], WithDefaults(b.defaults))
	return NewComposite(loaders, opts...)
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Composite {
	c, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("loader build failed: %v", err))
	}
	return c
}

// BuildConfig builds the composite and a config of schema s bound to it.
func (b *Builder) BuildConfig(s *Schema, opts ...ConfigOption) (*Config, error) {
	loader, err := b.Build()
	if err != nil {
		return nil, err
	}
	return s.Build(loader, opts...)
}

// cliArgs returns the process arguments without the program name.
func cliArgs() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
