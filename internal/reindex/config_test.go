package reindex_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reindexer/internal/reindex"
	"github.com/dmitrymomot/reindexer/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := reindex.LoadConfig("reindex_defaults")
	require.NoError(t, err)
	assert.Equal(t, reindex.DefaultConfig(), cfg)
}

func TestLoadConfig_PerEntity(t *testing.T) {
	t.Setenv("PRODUCTS_LIMIT", "500")
	t.Setenv("PRODUCTS_ATOMIC_ALIAS", "false")
	t.Setenv("PRODUCTS_PHASE_TIMEOUT", "2m")
	t.Setenv("PRODUCTS_SHARDS", "2")
	t.Setenv("PRODUCTS_REPLICAS", "0")
	t.Setenv("PRODUCERS_ABORT_ON_EMPTY", "true")

	products, err := reindex.LoadConfig("products")
	require.NoError(t, err)
	assert.Equal(t, 500, products.Limit)
	assert.False(t, products.AtomicAlias)
	assert.Equal(t, 2*time.Minute, products.PhaseTimeout)
	assert.Equal(t, 2, products.Shards)
	assert.Equal(t, 0, products.Replicas)
	assert.False(t, products.AbortOnEmpty)

	producers, err := reindex.LoadConfig("producers")
	require.NoError(t, err)
	assert.Zero(t, producers.Limit)
	assert.True(t, producers.AtomicAlias)
	assert.True(t, producers.AbortOnEmpty)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("BROKEN_ENTITY_BULK_WORKERS", "several")

	_, err := reindex.LoadConfig("broken_entity")
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}
