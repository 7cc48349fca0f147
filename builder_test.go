// FILE: lixenwraith/varconf/builder_test.go
package varconf

import (
	"io/fs"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	type Defaults struct {
		Host string `toml:"host"`
		Port int    `toml:"port"`
		Mode string `toml:"mode"`
		Tier string `toml:"tier"`
	}

	t.Run("DefaultsOnly", func(t *testing.T) {
		c, err := NewBuilder().
			WithDefaults(&Defaults{Host: "localhost", Port: 8080}).
			Build()
		require.NoError(t, err)

		assert.Equal(t, "localhost", c.Get(MustKey("host"), nil))
		assert.Equal(t, 8080, c.Get(MustKey("port"), nil))

		// Declared by defaults, so writable
		require.NoError(t, c.Set(MustKey("port"), 9090))
		assert.Equal(t, 9090, c.Get(MustKey("port"), nil))
	})

	t.Run("Precedence", func(t *testing.T) {
		dir := t.TempDir()
		base := writeFile(t, dir, "base.toml", "host = \"file-host\"\nport = 1000\nmode = \"base\"\ntier = \"base\"\n")
		override := writeFile(t, dir, "override.yaml", "mode: override\ntier: override\n")
		t.Setenv("BLDTEST_tier", "env")
		t.Setenv("BLDTEST_port", "2000")

		c, err := NewBuilder().
			WithDefaults(Defaults{Host: "default-host", Port: 8080, Mode: "default", Tier: "default"}).
			WithFile(base).
			WithFile(override).
			WithEnvPrefix("BLDTEST_").
			WithArgs([]string{"--port=3000"}).
			Build()
		require.NoError(t, err)

		assert.Equal(t, "3000", c.Get(MustKey("port"), nil), "args beat env")
		assert.Equal(t, "env", c.Get(MustKey("tier"), nil), "env beats files")
		assert.Equal(t, "override", c.Get(MustKey("mode"), nil), "later file beats earlier")
		assert.Equal(t, "file-host", c.Get(MustKey("host"), nil), "files beat defaults")

		names := loaderNames(c.Loaders())
		assert.Equal(t, []string{"args", "env:BLDTEST_", "yaml:" + override, "toml:" + base}, names)
	})

	t.Run("NestedEnvNames", func(t *testing.T) {
		type Nested struct {
			Server struct {
				Port int    `toml:"port"`
				Host string `toml:"host"`
			} `toml:"server"`
		}
		defaults := Nested{}
		defaults.Server.Port = 80
		defaults.Server.Host = "localhost"
		t.Setenv("APPTEST_SERVER_PORT", "9000")

		c, err := NewBuilder().WithDefaults(defaults).WithEnvPrefix("APPTEST_").Build()
		require.NoError(t, err)
		assert.Equal(t, "9000", c.Get(MustKey("server/port"), nil))
		assert.Equal(t, "localhost", c.Get(MustKey("server/host"), nil))

		s := NewSchema("nested-env")
		port := MustDeclare[int](s, "server/port")
		cfg, err := NewBuilder().WithDefaults(defaults).WithEnvPrefix("APPTEST_").BuildConfig(s)
		require.NoError(t, err)
		assert.Equal(t, 9000, port.Get(cfg))

		flat, err := NewBuilder().
			WithDefaults(defaults).
			WithEnvPrefix("APPTEST_").
			WithEnvTransform(nil).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 80, flat.Get(MustKey("server/port"), nil))
		assert.Equal(t, "9000", flat.Get(MustKey("SERVER_PORT"), nil))
	})

	t.Run("MissingRequiredFile", func(t *testing.T) {
		_, err := NewBuilder().WithFile(filepath.Join(t.TempDir(), "missing.toml")).Build()
		assert.ErrorIs(t, err, ErrInvalidSource)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("MissingOptionalFile", func(t *testing.T) {
		c, err := NewBuilder().
			WithDefaults(map[string]any{"port": 8080}).
			WithOptionalFile(filepath.Join(t.TempDir(), "missing.toml")).
			Build()
		require.NoError(t, err)
		assert.Equal(t, 8080, c.Get(MustKey("port"), nil))
		assert.Len(t, c.Loaders(), 1)
	})

	t.Run("MalformedOptionalFile", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.json", "{")
		_, err := NewBuilder().WithOptionalFile(path).Build()
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("InvalidDefaults", func(t *testing.T) {
		_, err := NewBuilder().WithDefaults(42).Build()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register defaults")
	})

	t.Run("InvalidArgs", func(t *testing.T) {
		_, err := NewBuilder().WithArgs([]string{"--bad..key=1"}).Build()
		assert.ErrorIs(t, err, ErrInvalidSource)
	})

	t.Run("ExtraLoaders", func(t *testing.T) {
		extra := NewMap(map[string]any{"mode": "extra"})
		c, err := NewBuilder().WithLoader(extra).Build()
		require.NoError(t, err)
		assert.Equal(t, "extra", c.Get(MustKey("mode"), nil))

		_, err = NewBuilder().WithLoader(nil).Build()
		assert.ErrorIs(t, err, ErrInvalidLoader)
		assert.Panics(t, func() { NewBuilder().WithLoader(nil).MustBuild() })
	})

	t.Run("LoaderOptions", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "opts.json", `{"a": 1}`)
		c, err := NewBuilder().
			WithFile(path).
			WithLoaderOptions(WithAllowCreate()).
			Build()
		require.NoError(t, err)
		require.NoError(t, c.Set(MustKey("b"), 2))
		assert.Equal(t, 2, c.Get(MustKey("b"), nil))
	})

	t.Run("BuildConfig", func(t *testing.T) {
		s := NewSchema("built")
		port := MustDeclare(s, "port", WithDecoder(Int64Decoder()))
		cfg, err := NewBuilder().
			WithDefaults(map[string]any{"port": 8080}).
			WithArgs([]string{"--port", "9090"}).
			BuildConfig(s, Unfrozen())
		require.NoError(t, err)
		assert.Equal(t, int64(9090), port.Get(cfg))

		require.NoError(t, port.Set(cfg, 9191))
		assert.Equal(t, int64(9191), cfg.Loader().Get(MustKey("port"), nil))
	})
}

func TestStructDefaults(t *testing.T) {
	type TLS struct {
		Cert string `toml:"cert"`
	}
	type Server struct {
		Host    string        `toml:"host"`
		Timeout time.Duration `toml:"timeout"`
		Started time.Time     `toml:"started"`
		Bind    net.IP        `toml:"bind"`
		TLS     *TLS          `toml:"tls"`
		Proxy   *TLS          `toml:"proxy"`
	}
	type App struct {
		Server   Server `toml:"server"`
		Name     string `toml:"name,omitempty"`
		Untagged int
		Skipped  string `toml:"-"`
		internal string
	}

	started := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := StructDefaults(App{
		Server: Server{
			Host:    "localhost",
			Timeout: time.Second,
			Started: started,
			Bind:    net.ParseIP("127.0.0.1"),
			TLS:     &TLS{Cert: "cert.pem"},
		},
		Name:     "app",
		Untagged: 3,
		Skipped:  "no",
		internal: "no",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"server": map[string]any{
			"host":    "localhost",
			"timeout": time.Second,
			"started": started,
			"bind":    net.ParseIP("127.0.0.1"),
			"tls":     map[string]any{"cert": "cert.pem"},
		},
		"name":     "app",
		"Untagged": 3,
	}, got)

	t.Run("Rejects", func(t *testing.T) {
		_, err := StructDefaults(42)
		assert.Error(t, err)

		var nilApp *App
		_, err = StructDefaults(nilApp)
		assert.Error(t, err)
	})
}

func TestFileDiscovery(t *testing.T) {
	dir := t.TempDir()
	opts := FileDiscoveryOptions{
		Name:       "myapp",
		Extensions: []string{".toml", ".json"},
		Paths:      []string{dir},
		EnvVar:     "MYAPP_TEST_CONFIG",
		CLIFlag:    "--config",
	}

	t.Run("NothingFound", func(t *testing.T) {
		_, _, found := Locate(opts, nil)
		assert.False(t, found)
	})

	t.Run("SearchPathsInExtensionOrder", func(t *testing.T) {
		sub := t.TempDir()
		writeFile(t, sub, "myapp.json", `{}`)
		tomlPath := writeFile(t, sub, "myapp.toml", "")

		o := opts
		o.Paths = []string{sub}
		path, explicit, found := Locate(o, nil)
		assert.True(t, found)
		assert.False(t, explicit)
		assert.Equal(t, tomlPath, path)
	})

	t.Run("EnvVar", func(t *testing.T) {
		t.Setenv("MYAPP_TEST_CONFIG", "/from/env.toml")
		path, explicit, found := Locate(opts, nil)
		assert.True(t, found)
		assert.True(t, explicit)
		assert.Equal(t, "/from/env.toml", path)
	})

	t.Run("CLIFlagBeatsEnv", func(t *testing.T) {
		t.Setenv("MYAPP_TEST_CONFIG", "/from/env.toml")
		path, _, _ := Locate(opts, []string{"--config", "/from/flag.toml"})
		assert.Equal(t, "/from/flag.toml", path)

		path, _, _ = Locate(opts, []string{"--config=/from/eq.toml"})
		assert.Equal(t, "/from/eq.toml", path)
	})

	t.Run("BuilderExplicitMissing", func(t *testing.T) {
		_, err := NewBuilder().
			WithArgs([]string{"--config", filepath.Join(dir, "absent.toml")}).
			WithFileDiscovery(opts).
			Build()
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("BuilderDiscovered", func(t *testing.T) {
		sub := t.TempDir()
		writeFile(t, sub, "myapp.toml", "port = 7000\n")
		o := opts
		o.Paths = []string{sub}

		c, err := NewBuilder().WithArgs(nil).WithFileDiscovery(o).Build()
		require.NoError(t, err)
		assert.Equal(t, int64(7000), c.Get(MustKey("port"), nil))
	})

	t.Run("DefaultOptions", func(t *testing.T) {
		d := DefaultDiscoveryOptions("svc")
		assert.Equal(t, "SVC_CONFIG", d.EnvVar)
		assert.Equal(t, "--config", d.CLIFlag)
		assert.True(t, d.UseXDG)
		assert.Contains(t, d.Extensions, ".yml")
	})

	t.Run("XDGPaths", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg/home")
		t.Setenv("XDG_CONFIG_DIRS", "/xdg/a"+string(filepath.ListSeparator)+"/xdg/b")
		assert.Equal(t, []string{
			filepath.Join("/xdg/home", "svc"),
			filepath.Join("/xdg/a", "svc"),
			filepath.Join("/xdg/b", "svc"),
		}, getXDGConfigPaths("svc"))
	})
}
