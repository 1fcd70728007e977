package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/config"
)

type fileConfig struct {
	Name    string   `env:"DISPATCH_TEST_NAME"`
	Workers int      `env:"DISPATCH_TEST_WORKERS" envDefault:"1"`
	Emails  []string `env:"DISPATCH_TEST_EMAILS" envSeparator:","`
}

type defaultsConfig struct {
	Port    int    `env:"DISPATCH_TEST_PORT" envDefault:"8080"`
	Missing string `env:"DISPATCH_TEST_MISSING"`
}

type requiredConfig struct {
	Value string `env:"DISPATCH_TEST_REQUIRED,required"`
}

type badIntConfig struct {
	N int `env:"DISPATCH_TEST_BAD_INT"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg defaultsConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.Missing)
}

func TestLoad_FromEnvFile(t *testing.T) {
	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "print shop", cfg.Name)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"ops@example.com", "floor@example.com"}, cfg.Emails)
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("DISPATCH_TEST_PORT", "9000")
	config.ResetCache()

	var first defaultsConfig
	require.NoError(t, config.Load(&first))
	assert.Equal(t, 9000, first.Port)

	t.Setenv("DISPATCH_TEST_PORT", "9100")
	var second defaultsConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, 9000, second.Port)

	config.ResetCache()
}

func TestLoad_Errors(t *testing.T) {
	assert.ErrorIs(t, config.Load[requiredConfig](nil), config.ErrNilPointer)

	var req requiredConfig
	assert.ErrorIs(t, config.Load(&req), config.ErrParsingConfig)

	t.Setenv("DISPATCH_TEST_BAD_INT", "many")
	var bad badIntConfig
	assert.ErrorIs(t, config.Load(&bad), config.ErrParsingConfig)

	assert.Panics(t, func() { config.MustLoad(&requiredConfig{}) })
	assert.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadEnvFile)
}
