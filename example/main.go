// FILE: lixenwraith/varconf/example/main.go
package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lixenwraith/varconf"
)

// AppDefaults is registered as the lowest-priority layer.
type AppDefaults struct {
	Server struct {
		Host    string        `toml:"host"`
		Port    int64         `toml:"port"`
		Timeout time.Duration `toml:"timeout"`
	} `toml:"server"`
	Debug bool `toml:"debug"`
}

var (
	schema = varconf.NewSchema("app")

	host = varconf.MustDeclare(schema, "server/host",
		varconf.WithValidator(varconf.NotEmpty[string]()))
	port = varconf.MustDeclare(schema, "server/port",
		varconf.WithDefault[int64](8080),
		varconf.WithDecoder(varconf.Int64Decoder()),
		varconf.WithValidator(varconf.Between[int64](1, 65535)))
	timeout = varconf.MustDeclare[time.Duration](schema, "server/timeout")
	debug   = varconf.MustDeclare(schema, "debug",
		varconf.WithDecoder(varconf.BoolDecoder()),
		varconf.WithDefault(false))

	// Stored as "1.4.2" in files and as a list elsewhere.
	version = varconf.MustDeclare(schema, "version",
		varconf.WithDecoderTable(varconf.NewDecoderTable[[]string]().
			On((*varconf.TOMLFile)(nil), func(_ varconf.Loader, _ varconf.Key, raw any) ([]string, error) {
				s, ok := raw.(string)
				if !ok {
					return nil, varconf.Invalid("version must be a dotted string")
				}
				return strings.Split(s, "."), nil
			}).
			Otherwise(varconf.DefaultDecoder[[]string]())),
		varconf.WithEncoderTable(varconf.NewEncoderTable[[]string]().
			On((*varconf.TOMLFile)(nil), func(_ varconf.Loader, _ varconf.Key, v []string) (any, error) {
				return strings.Join(v, "."), nil
			}).
			Otherwise(varconf.DefaultEncoder[[]string]())),
		varconf.Constant[[]string]())
)

func main() {
	dir, err := os.MkdirTemp("", "varconf-example")
	if err != nil {
		log.Fatalf("failed to create work dir: %v", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "app.toml")
	initial := `version = "1.4.2"

[server]
host = "example.com"
port = 99999
`
	if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
		log.Fatalf("failed to write %s: %v", path, err)
	}

	defaults := AppDefaults{}
	defaults.Server.Host = "localhost"
	defaults.Server.Port = 8080
	defaults.Server.Timeout = 5 * time.Second

	// Environment names map to nested keys: APP_SERVER_TIMEOUT is server/timeout.
	os.Setenv("APP_DEBUG", "t")
	os.Setenv("APP_SERVER_TIMEOUT", "10s")
	defer os.Unsetenv("APP_DEBUG")
	defer os.Unsetenv("APP_SERVER_TIMEOUT")

	cfg, err := varconf.NewBuilder().
		WithDefaults(defaults).
		WithFile(path).
		WithEnvPrefix("APP_").
		BuildConfig(schema)
	if err != nil {
		log.Fatalf("failed to build config: %v", err)
	}

	// port 99999 fails validation and falls back to its default.
	log.Printf("host=%s port=%d timeout=%s debug=%t version=%v",
		host.Get(cfg), port.Get(cfg), timeout.Get(cfg), debug.Get(cfg), version.Get(cfg))

	if err := port.Set(cfg, 9090); errors.Is(err, varconf.ErrImmutable) {
		log.Printf("frozen config rejected write: %v", err)
	}

	cfg.Unfreeze()
	if err := port.Set(cfg, 9090); err != nil {
		log.Fatalf("failed to set port: %v", err)
	}
	if err := version.Set(cfg, []string{"2", "0", "0"}); errors.Is(err, varconf.ErrImmutable) {
		log.Printf("constant rejected write: %v", err)
	}
	cfg.Freeze()

	if err := cfg.Save(false); err != nil {
		log.Fatalf("failed to save: %v", err)
	}

	saved, _ := os.ReadFile(path)
	log.Printf("saved %s:\n%s", path, saved)
	log.Print(cfg.Debug())
}
