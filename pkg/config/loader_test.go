package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reindexer/pkg/config"
)

type sourceDefaults struct {
	Host    string        `env:"TEST_SRC_DEFAULT_HOST" envDefault:"localhost"`
	Port    int           `env:"TEST_SRC_DEFAULT_PORT" envDefault:"3306"`
	Timeout time.Duration `env:"TEST_SRC_DEFAULT_TIMEOUT" envDefault:"10s"`
}

type sourceSuccess struct {
	Host string `env:"TEST_SRC_SUCCESS_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_SRC_SUCCESS_PORT" envDefault:"3306"`
}

type cachedConfig struct {
	Alias string `env:"TEST_CACHED_ALIAS" envDefault:"products"`
}

type requiredConfig struct {
	Password string `env:"TEST_REQUIRED_PASSWORD,required"`
}

type runSettings struct {
	Limit        int           `env:"LIMIT" envDefault:"0"`
	PhaseTimeout time.Duration `env:"PHASE_TIMEOUT" envDefault:"30m"`
}

type envFileConfig struct {
	Host      string   `env:"TEST_DB_HOST"`
	Port      int      `env:"TEST_DB_PORT"`
	Addresses []string `env:"TEST_OPENSEARCH_ADDRESSES" envSeparator:","`
	Quoted    string   `env:"TEST_QUOTED"`
}

func TestLoad_Success(t *testing.T) {
	t.Setenv("TEST_SRC_SUCCESS_HOST", "mysql.internal")
	t.Setenv("TEST_SRC_SUCCESS_PORT", "3307")

	var cfg sourceSuccess
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "mysql.internal", cfg.Host)
	assert.Equal(t, 3307, cfg.Port)
}

func TestLoad_DefaultValues(t *testing.T) {
	os.Unsetenv("TEST_SRC_DEFAULT_HOST")
	os.Unsetenv("TEST_SRC_DEFAULT_PORT")
	os.Unsetenv("TEST_SRC_DEFAULT_TIMEOUT")

	var cfg sourceDefaults
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_Cached(t *testing.T) {
	t.Setenv("TEST_CACHED_ALIAS", "producers")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("TEST_CACHED_ALIAS", "products")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "producers", second.Alias, "second load must be served from cache")

	var reloaded cachedConfig
	require.NoError(t, config.ForceReloadConfig(&reloaded))
	assert.Equal(t, "products", reloaded.Alias)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("TEST_REQUIRED_PASSWORD")

	var cfg requiredConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	t.Setenv("TEST_REQUIRED_PASSWORD", "secret")

	var retry requiredConfig
	require.NoError(t, config.Load(&retry), "a failed parse must not be cached")
	assert.Equal(t, "secret", retry.Password)
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *sourceSuccess
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	assert.ErrorIs(t, config.LoadPrefixed("products", cfg), config.ErrNilPointer)
}

func TestLoadPrefixed(t *testing.T) {
	t.Setenv("PRODUCTS_LIMIT", "100")
	t.Setenv("PRODUCTS_PHASE_TIMEOUT", "5m")
	t.Setenv("PRODUCERS_LIMIT", "7")

	var products runSettings
	require.NoError(t, config.LoadPrefixed("products", &products))
	assert.Equal(t, 100, products.Limit)
	assert.Equal(t, 5*time.Minute, products.PhaseTimeout)

	var producers runSettings
	require.NoError(t, config.LoadPrefixed("PRODUCERS_", &producers))
	assert.Equal(t, 7, producers.Limit)
	assert.Equal(t, 30*time.Minute, producers.PhaseTimeout)
}

func TestLoadPrefixed_InvalidValue(t *testing.T) {
	t.Setenv("BROKEN_LIMIT", "many")

	var cfg runSettings
	err := config.LoadPrefixed("broken", &cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadEnv_Files(t *testing.T) {
	for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_OPENSEARCH_ADDRESSES", "TEST_QUOTED", "TEST_PRODUCTS_LIMIT", "TEST_PRODUCERS_LIMIT"} {
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_OPENSEARCH_ADDRESSES", "TEST_QUOTED", "TEST_PRODUCTS_LIMIT", "TEST_PRODUCERS_LIMIT"} {
			os.Unsetenv(k)
		}
	})
	config.ResetCache()

	require.NoError(t, config.LoadEnv("testdata/.env.base", "testdata/.env.override"))

	var cfg envFileConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "db.replica", cfg.Host, "later files override earlier ones")
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, []string{"https://search-1:9200", "https://search-2:9200"}, cfg.Addresses)
	assert.Equal(t, "quoted value", cfg.Quoted)

	var products runSettings
	require.NoError(t, config.LoadPrefixed("TEST_PRODUCTS", &products))
	assert.Equal(t, 1000, products.Limit)

	var producers runSettings
	require.NoError(t, config.LoadPrefixed("TEST_PRODUCERS", &producers))
	assert.Equal(t, 50, producers.Limit)
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does_not_exist.env")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}
