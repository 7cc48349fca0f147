// File: lixenwraith/varconf/convenience.go
package varconf

import (
	"fmt"
)

// Quick builds a config of schema s from the standard sources with a single
// call: process args, environment variables with envPrefix, configFile if it
// exists, and defaults (a map or a struct). An empty envPrefix leaves the
// environment out. The config is left unfrozen only if opts say so.
func Quick(s *Schema, defaults any, envPrefix, configFile string, opts ...ConfigOption) (*Config, error) {
	b := NewBuilder().
		WithDefaults(defaults).
		WithArgs(cliArgs())
	if envPrefix != "" {
		b = b.WithEnvPrefix(envPrefix)
	}
	if configFile != "" {
		b = b.WithOptionalFile(configFile)
	}
	return b.BuildConfig(s, opts...)
}

// MustQuick is like Quick but panics on error
func MustQuick(s *Schema, defaults any, envPrefix, configFile string, opts ...ConfigOption) *Config {
	cfg, err := Quick(s, defaults, envPrefix, configFile, opts...)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Require checks that every key is declared and present in the loader its
// variable is bound to, rather than satisfied by the variable's default.
func (c *Config) Require(keys ...string) error {
	var missing []string
	for _, path := range keys {
		k, err := ParseKey(path)
		if err != nil {
			missing = append(missing, path+" (invalid)")
			continue
		}
		found := false
		for _, v := range c.vars {
			if v.Key().Equal(k) {
				if src := v.Source(); src != nil {
					_, err := src.Lookup(k)
					found = err == nil
				}
				break
			}
		}
		if !found {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required configuration: %v", ErrKeyNotFound, missing)
	}
	return nil
}
