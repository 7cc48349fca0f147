// FILE: lixenwraith/varconf/discovery.go
package varconf

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config")
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// Locate finds the config file. A path given by the CLI flag in args or by
// the environment variable is returned as-is with explicit set, without
// checking that it exists. Otherwise the search paths are probed in order.
func Locate(opts FileDiscoveryOptions, args []string) (path string, explicit bool, found bool) {
	if opts.CLIFlag != "" {
		for i, arg := range args {
			if arg == opts.CLIFlag && i+1 < len(args) {
				return args[i+1], true, true
			}
			if value, ok := strings.CutPrefix(arg, opts.CLIFlag+"="); ok {
				return value, true, true
			}
		}
	}

	if opts.EnvVar != "" {
		if p := os.Getenv(opts.EnvVar); p != "" {
			return p, true, true
		}
	}

	for _, dir := range searchPaths(opts) {
		for _, ext := range opts.Extensions {
			candidate := filepath.Join(dir, opts.Name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, false, true
			}
		}
	}

	return "", false, false
}

// WithFileDiscovery adds the located config file. An explicitly named file
// must exist; a discovered one is optional, and finding none is not an error.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	args := b.args
	if !b.useArgs {
		args = cliArgs()
	}
	path, explicit, found := Locate(opts, args)
	switch {
	case !found:
		return b
	case explicit:
		return b.WithFile(path)
	default:
		return b.WithOptionalFile(path)
	}
}

func searchPaths(opts FileDiscoveryOptions) []string {
	var paths []string

	paths = append(paths, opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			paths = append(paths, cwd)
		}
	}

	if opts.UseXDG {
		paths = append(paths, getXDGConfigPaths(opts.Name)...)
	}

	return paths
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string) []string {
	var paths []string

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
