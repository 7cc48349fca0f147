// File: lixenwraith/varconf/doc.go

// Package varconf binds typed, validated variables to values kept in
// configuration loaders: in-memory maps, JSON, YAML and TOML files, JSON
// strings, environment variables and command-line flags.
//
// Loaders hold a data map and a lower-priority defaults map and address
// values by Key, an ordered path of segments. A Composite stacks loaders by
// priority: reads return the first hit, writes and deletes reach every
// constituent holding the key.
//
// A Var decodes, validates and caches the value at its key, falling back to
// its default when the stored value is rejected, and writes updates back
// through its loader atomically: a rejected or failed write leaves both the
// variable and the loader unchanged.
//
// Quick Start:
//
//	var (
//	    schema  = varconf.NewSchema("app")
//	    host    = varconf.MustDeclare(schema, "server/host", varconf.WithDefault("localhost"))
//	    port    = varconf.MustDeclare(schema, "server/port",
//	        varconf.WithDefault(8080),
//	        varconf.WithValidator(varconf.Between(1, 65535)))
//	    verbose = varconf.MustDeclare(schema, "verbose",
//	        varconf.WithDecoder(varconf.BoolDecoder()),
//	        varconf.WithDefault(false))
//	)
//
//	loader, err := varconf.Open("config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := schema.Build(loader)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	addr := fmt.Sprintf("%s:%d", host.Get(cfg), port.Get(cfg))
//
// Configs are frozen once built. To change values at runtime:
//
//	cfg.Unfreeze()
//	err = port.Set(cfg, 9090)
//	cfg.Freeze()
//	err = cfg.Save(false)
//
// Layered sources:
//
//	loader, err := varconf.NewBuilder().
//	    WithDefaults(defaults).      // map or struct with `toml` tags
//	    WithOptionalFile("config.toml").
//	    WithEnvPrefix("MYAPP_").
//	    WithArgs(os.Args[1:]).
//	    Build()
//
// Precedence (highest to lowest): flags, environment, files, defaults.
//
// Concurrency:
// Nothing in this package is synchronized. Callers sharing loaders or
// configs between goroutines must serialize access themselves.
package varconf
