// FILE: lixenwraith/varconf/variable_test.go
package varconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarResolution(t *testing.T) {
	t.Run("NestedKey", func(t *testing.T) {
		data := map[string]any{"settings": map[string]any{"timeout": 30}}
		v, err := NewVar("settings/timeout", WithLoader[int](NewMap(data)))
		require.NoError(t, err)
		assert.True(t, v.Resolved())
		assert.Equal(t, 30, v.Get())

		require.NoError(t, v.Set(45))
		assert.Equal(t, 45, v.Get())
		assert.Equal(t, map[string]any{"settings": map[string]any{"timeout": 45}}, data)
	})

	t.Run("MissingKeyUsesDefault", func(t *testing.T) {
		v, err := NewVar("missing", WithDefault(7), WithLoader[int](NewMap(nil)))
		require.NoError(t, err)
		assert.Equal(t, 7, v.Get())
	})

	t.Run("MissingKeyWithoutDefault", func(t *testing.T) {
		_, err := NewVar("missing", WithLoader[int](NewMap(nil)))
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("RejectedValueFallsBackToDefault", func(t *testing.T) {
		l := NewMap(map[string]any{"size": 1000})
		v, err := NewVar("size",
			WithDefault(128),
			WithValidator(Between(1, 255)),
			WithLoader[int](l))
		require.NoError(t, err)
		assert.Equal(t, 128, v.Get())
		assert.Equal(t, 1000, l.Get(MustKey("size"), nil), "fallback must not rewrite the loader")
	})

	t.Run("RejectedValueWithoutDefault", func(t *testing.T) {
		_, err := NewVar("size",
			WithValidator(Between(1, 255)),
			WithLoader[int](NewMap(map[string]any{"size": 1000}, WithName("sizes"))))
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.ErrorIs(t, err, ErrValidation)

		var invalid *InvalidValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "sizes", invalid.Loader)
		assert.Equal(t, 1000, invalid.Value)
	})

	t.Run("RejectedValueFallsBackToLoaderDefaults", func(t *testing.T) {
		l := NewMap(map[string]any{"size": 9999}, WithDefaults(map[string]any{"size": 64}))
		v, err := NewVar("size",
			WithValidator(Between(1, 1000)),
			WithLoader[int](l))
		require.NoError(t, err)
		assert.Equal(t, 64, v.Get())
		assert.Equal(t, 9999, l.Get(MustKey("size"), nil))
	})

	t.Run("VarDefaultBeatsLoaderDefaults", func(t *testing.T) {
		l := NewMap(map[string]any{"size": 9999}, WithDefaults(map[string]any{"size": 64}))
		v, err := NewVar("size",
			WithDefault(128),
			WithValidator(Between(1, 1000)),
			WithLoader[int](l))
		require.NoError(t, err)
		assert.Equal(t, 128, v.Get())
	})

	t.Run("RejectedLoaderDefaults", func(t *testing.T) {
		l := NewMap(map[string]any{"size": 9999}, WithDefaults(map[string]any{"size": 5000}))
		_, err := NewVar("size",
			WithValidator(Between(1, 1000)),
			WithLoader[int](l))
		require.ErrorIs(t, err, ErrValidation)

		var invalid *InvalidValueError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 9999, invalid.Value)
	})

	t.Run("CompositeLoaderDefaults", func(t *testing.T) {
		c, err := NewComposite([]Loader{NewMap(map[string]any{"size": 9999})},
			WithDefaults(map[string]any{"size": 64}))
		require.NoError(t, err)
		v, err := NewVar("size", WithValidator(Between(1, 1000)), WithLoader[int](c))
		require.NoError(t, err)
		assert.Equal(t, 64, v.Get())
	})

	t.Run("UndecodableValueFallsBack", func(t *testing.T) {
		v, err := NewVar("timeout",
			WithDefault(5*time.Second),
			WithLoader[time.Duration](NewMap(map[string]any{"timeout": "soon"})))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, v.Get())
	})

	t.Run("InvalidDefaultFailsFast", func(t *testing.T) {
		_, err := NewVar("size", WithDefault(0), WithValidator(Between(1, 255)))
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), "invalid default")
	})

	t.Run("WeakDecodingFromJSON", func(t *testing.T) {
		l, err := LoadJSONString(`{"port": 8080, "ratio": "0.25", "timeout": "1m30s", "hosts": "a,b"}`)
		require.NoError(t, err)

		port, err := NewVar("port", WithLoader[int](l))
		require.NoError(t, err)
		assert.Equal(t, 8080, port.Get())

		ratio, err := NewVar("ratio", WithLoader[float64](l))
		require.NoError(t, err)
		assert.Equal(t, 0.25, ratio.Get())

		timeout, err := NewVar("timeout", WithLoader[time.Duration](l))
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, timeout.Get())

		hosts, err := NewVar("hosts", WithLoader[[]string](l))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, hosts.Get())
	})

	t.Run("RebindResolvesAgain", func(t *testing.T) {
		v, err := NewVar("k", WithLoader[string](NewMap(map[string]any{"k": "first"})))
		require.NoError(t, err)
		require.NoError(t, v.Bind(NewMap(map[string]any{"k": "second"})))
		assert.Equal(t, "second", v.Get())
	})

	t.Run("BindNil", func(t *testing.T) {
		v := MustVar[string]("k")
		assert.ErrorIs(t, v.Bind(nil), ErrInvalidLoader)
	})

	t.Run("MustVarPanics", func(t *testing.T) {
		assert.Panics(t, func() { MustVar[int](42) })
	})
}

func TestVarBeforeBind(t *testing.T) {
	t.Run("DefaultWithoutCommitting", func(t *testing.T) {
		v := MustVar("port", WithDefault(8080))
		value, err := v.Value()
		require.NoError(t, err)
		assert.Equal(t, 8080, value)
		assert.False(t, v.Resolved())
		assert.Nil(t, v.Source())
	})

	t.Run("NoDefault", func(t *testing.T) {
		v := MustVar[int]("port")
		_, err := v.Value()
		assert.ErrorIs(t, err, ErrUnresolved)
		assert.Equal(t, 0, v.Get())
	})

	t.Run("SetUnbound", func(t *testing.T) {
		v := MustVar("port", WithDefault(8080))
		assert.ErrorIs(t, v.Set(9090), ErrUnresolved)
		_, err := v.Serialize()
		assert.ErrorIs(t, err, ErrUnresolved)
	})

	t.Run("Accessors", func(t *testing.T) {
		v := MustVar("server/port", WithDefault(8080))
		def, ok := v.Default()
		assert.True(t, ok)
		assert.Equal(t, 8080, def)
		assert.Equal(t, "server[/]port", v.Key().String())
		assert.Equal(t, "Var(server[/]port)", v.String())

		_, ok = MustVar[int]("x").Default()
		assert.False(t, ok)
	})
}

func TestBoolVar(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want bool
	}{
		{"YesNotInDefaultSet", "YES", false},
		{"TrueString", "true", true},
		{"TrueUpper", "TRUE", true},
		{"ShortT", "t", true},
		{"OneString", "1", true},
		{"OneInt", 1, true},
		{"ZeroInt", 0, false},
		{"NegativeInt", -3, false},
		{"Float", 0.5, true},
		{"JSONNumber", json.Number("2"), true},
		{"Bool", true, true},
		{"Nil", nil, false},
		{"Slice", []any{"true"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewBool("flag", nil, WithLoader[bool](NewMap(map[string]any{"flag": tt.raw})))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Get())
		})
	}

	t.Run("CustomTokens", func(t *testing.T) {
		l := NewMap(map[string]any{"a": "YES", "b": "true"})
		a, err := NewBool("a", []string{"yes", "on"}, WithLoader[bool](l))
		require.NoError(t, err)
		b, err := NewBool("b", []string{"yes", "on"}, WithLoader[bool](l))
		require.NoError(t, err)
		assert.True(t, a.Get())
		assert.False(t, b.Get())
	})
}

func TestVarWrite(t *testing.T) {
	t.Run("InvalidWriteLeavesState", func(t *testing.T) {
		l := NewMap(map[string]any{"size": 64})
		v, err := NewVar("size", WithValidator(Between(1, 255)), WithLoader[int](l))
		require.NoError(t, err)

		err = v.Set(1000)
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, 64, v.Get())
		assert.Equal(t, 64, l.Get(MustKey("size"), nil))
	})

	t.Run("LoaderRejectionRollsBack", func(t *testing.T) {
		// Key only known through the Var default; the loader refuses to create it
		l := NewMap(nil)
		v, err := NewVar("size", WithDefault(128), WithLoader[int](l))
		require.NoError(t, err)

		err = v.Set(64)
		assert.ErrorIs(t, err, ErrKeyNotFound)
		assert.Equal(t, 128, v.Get())
		assert.Empty(t, l.Data())
	})

	t.Run("LoaderFailureRollsBack", func(t *testing.T) {
		diskErr := errors.New("disk full")
		l := &failingLoader{MapLoader: NewMap(map[string]any{"size": 64}), err: diskErr}
		v, err := NewVar("size", WithLoader[int](l))
		require.NoError(t, err)

		assert.ErrorIs(t, v.Set(32), diskErr)
		assert.Equal(t, 64, v.Get())
	})

	t.Run("EncoderFailureRollsBack", func(t *testing.T) {
		l := NewMap(map[string]any{"size": 64})
		v, err := NewVar("size",
			WithEncoder(func(_ Loader, _ Key, value int) (any, error) {
				if value%2 != 0 {
					return nil, fmt.Errorf("odd value %d", value)
				}
				return value, nil
			}),
			WithLoader[int](l))
		require.NoError(t, err)

		assert.Error(t, v.Set(33))
		assert.Equal(t, 64, v.Get())
		assert.Equal(t, 64, l.Get(MustKey("size"), nil))

		require.NoError(t, v.Set(32))
		assert.Equal(t, 32, l.Get(MustKey("size"), nil))
	})

	t.Run("EncodedFormIsStored", func(t *testing.T) {
		l := NewMap(map[string]any{"timeout": "30s"})
		v, err := NewVar("timeout",
			WithEncoder(func(_ Loader, _ Key, d time.Duration) (any, error) { return d.String(), nil }),
			WithLoader[time.Duration](l))
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, v.Get())

		require.NoError(t, v.Set(time.Minute))
		assert.Equal(t, "1m0s", l.Get(MustKey("timeout"), nil))

		raw, err := v.Serialize()
		require.NoError(t, err)
		assert.Equal(t, "1m0s", raw)
	})

	t.Run("ConstantRejectsWrites", func(t *testing.T) {
		l := NewMap(map[string]any{"version": "1.0"})
		v, err := NewVar("version", Constant[string](), WithLoader[string](l))
		require.NoError(t, err)
		assert.True(t, v.IsConstant())

		assert.ErrorIs(t, v.Set("2.0"), ErrImmutable)
		assert.Equal(t, "1.0", v.Get())
		assert.Equal(t, "1.0", l.Get(MustKey("version"), nil))
	})

	t.Run("CompositeWriteFansOut", func(t *testing.T) {
		a := NewMap(map[string]any{"x": "1"})
		b := NewMap(map[string]any{"x": "2", "y": "3"})
		v, err := NewVar("x", WithLoader[string](MustComposite(a, b)))
		require.NoError(t, err)
		assert.Equal(t, "1", v.Get())

		require.NoError(t, v.Set("5"))
		assert.Equal(t, "5", a.Get(MustKey("x"), nil))
		assert.Equal(t, "5", b.Get(MustKey("x"), nil))
	})
}

func TestVarReconfigure(t *testing.T) {
	t.Run("SetValidatorRejectsLiveValue", func(t *testing.T) {
		v, err := NewVar("n", WithLoader[int](NewMap(map[string]any{"n": 30})))
		require.NoError(t, err)

		err = v.SetValidator(Between(40, 50))
		assert.ErrorIs(t, err, ErrInvalidValue)

		// Old validator (none) still applies
		require.NoError(t, v.Set(100))
		assert.Equal(t, 100, v.Get())
	})

	t.Run("SetValidatorRejectsDefault", func(t *testing.T) {
		v, err := NewVar("n", WithDefault(5), WithLoader[int](NewMap(map[string]any{"n": 45})))
		require.NoError(t, err)

		err = v.SetValidator(Between(40, 50))
		require.ErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), "default")
	})

	t.Run("SetValidatorApplies", func(t *testing.T) {
		v, err := NewVar("n", WithLoader[int](NewMap(map[string]any{"n": 45})))
		require.NoError(t, err)

		require.NoError(t, v.SetValidator(Between(40, 50)))
		assert.ErrorIs(t, v.Set(60), ErrValidation)
		require.NoError(t, v.SetValidator(nil))
		assert.NoError(t, v.Set(60))
	})

	t.Run("SetDecoderReresolves", func(t *testing.T) {
		reject := func(_ Loader, _ Key, _ any) (int, error) { return 0, Invalid("not yet") }
		v, err := NewVar("n",
			WithDefault(-1),
			WithDecoder(reject),
			WithLoader[int](NewMap(map[string]any{"n": "42"})))
		require.NoError(t, err)
		assert.Equal(t, -1, v.Get())

		require.NoError(t, v.SetDecoder(DefaultDecoder[int]()))
		assert.Equal(t, 42, v.Get())
	})

	t.Run("SetDecoderRestoresOnFailure", func(t *testing.T) {
		l := NewMap(map[string]any{"n": "42"})
		v, err := NewVar("n", WithLoader[int](l))
		require.NoError(t, err)
		assert.Equal(t, 42, v.Get())

		err = v.SetDecoder(func(_ Loader, _ Key, _ any) (int, error) { return 0, errors.New("broken") })
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, 42, v.Get())

		// Previous decoder is back in place
		require.NoError(t, v.Bind(l))
		assert.Equal(t, 42, v.Get())
	})

	t.Run("SetDecoderUnbound", func(t *testing.T) {
		v := MustVar[int]("n")
		assert.NoError(t, v.SetDecoder(nil))
		assert.False(t, v.Resolved())
	})
}
