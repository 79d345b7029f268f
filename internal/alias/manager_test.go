package alias_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reindexer/internal/alias"
	"github.com/dmitrymomot/reindexer/internal/searchtest"
)

func setup(t *testing.T, opts ...alias.Option) (*alias.Manager, *searchtest.Server) {
	t.Helper()
	srv := searchtest.New(t)
	srv.CreateIndex("primary_products")
	srv.CreateIndex("secondary_products")
	return alias.NewManager(srv.Client(t), opts...), srv
}

func TestIndices(t *testing.T) {
	t.Parallel()

	m, srv := setup(t)
	ctx := context.Background()

	got, err := m.Indices(ctx, "products")
	require.NoError(t, err)
	assert.Empty(t, got, "missing alias is empty, not an error")

	srv.SetAlias("products", "secondary_products", "primary_products")
	got, err = m.Indices(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, []string{"primary_products", "secondary_products"}, got)
}

func TestIndices_TransportError(t *testing.T) {
	t.Parallel()

	m, srv := setup(t)
	srv.Close()
	_, err := m.Indices(context.Background(), "products")
	assert.ErrorIs(t, err, alias.ErrAliasRead)
}

func TestSwap_Atomic(t *testing.T) {
	t.Parallel()

	t.Run("first cutover", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t)
		require.NoError(t, m.Swap(context.Background(), "products", "primary_products"))
		assert.Equal(t, []string{"primary_products"}, srv.AliasTargets("products"))
	})

	t.Run("moves alias in one request", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t)
		srv.SetAlias("products", "primary_products")

		require.NoError(t, m.Swap(context.Background(), "products", "secondary_products", "primary_products"))
		assert.Equal(t, []string{"secondary_products"}, srv.AliasTargets("products"))
		assert.Equal(t, 1, srv.CountRequests(http.MethodPost, "/_aliases"))
	})

	t.Run("target in remove list is ignored", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t)
		srv.SetAlias("products", "primary_products")

		require.NoError(t, m.Swap(context.Background(), "products", "primary_products", "primary_products", ""))
		assert.Equal(t, []string{"primary_products"}, srv.AliasTargets("products"))
	})

	t.Run("rejected request leaves alias untouched", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t)
		srv.SetAlias("products", "primary_products")
		srv.FailAliasOp("add", http.StatusInternalServerError)

		err := m.Swap(context.Background(), "products", "secondary_products", "primary_products")
		require.Error(t, err)
		assert.ErrorIs(t, err, alias.ErrAliasAdd)
		assert.False(t, alias.IsRemoveFailure(err))

		var se *alias.SwapError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, alias.PhaseAdd, se.Phase)
		assert.Equal(t, "secondary_products", se.Index)
		assert.Equal(t, []string{"primary_products"}, srv.AliasTargets("products"))
	})

	t.Run("missing target index", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t)
		err := m.Swap(context.Background(), "products", "tertiary_products")
		assert.ErrorIs(t, err, alias.ErrAliasAdd)
		assert.Empty(t, srv.AliasTargets("products"))
	})

	t.Run("unacknowledged update is an error", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t)
		srv.UnacknowledgeAliases()

		err := m.Swap(context.Background(), "products", "primary_products")
		assert.ErrorIs(t, err, alias.ErrAliasAdd)
		assert.ErrorIs(t, err, alias.ErrNotAcked)
	})
}

func TestSwap_Sequential(t *testing.T) {
	t.Parallel()

	t.Run("adds then removes", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t, alias.WithSequential())
		srv.SetAlias("products", "primary_products")

		require.NoError(t, m.Swap(context.Background(), "products", "secondary_products", "primary_products"))
		assert.Equal(t, []string{"secondary_products"}, srv.AliasTargets("products"))
		assert.Equal(t, 2, srv.CountRequests(http.MethodPost, "/_aliases"))
	})

	t.Run("add failure sends no remove", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t, alias.WithSequential())
		srv.SetAlias("products", "primary_products")
		srv.FailAliasOp("add", http.StatusServiceUnavailable)

		err := m.Swap(context.Background(), "products", "secondary_products", "primary_products")
		assert.ErrorIs(t, err, alias.ErrAliasAdd)
		assert.Equal(t, 1, srv.CountRequests(http.MethodPost, "/_aliases"))
		assert.Equal(t, []string{"primary_products"}, srv.AliasTargets("products"))
	})

	t.Run("remove failure keeps both", func(t *testing.T) {
		t.Parallel()
		m, srv := setup(t, alias.WithSequential())
		srv.SetAlias("products", "primary_products")
		srv.FailAliasOp("remove", http.StatusInternalServerError)

		err := m.Swap(context.Background(), "products", "secondary_products", "primary_products")
		require.Error(t, err)
		assert.ErrorIs(t, err, alias.ErrAliasRemove)
		assert.True(t, alias.IsRemoveFailure(err))
		assert.Equal(t, []string{"primary_products", "secondary_products"}, srv.AliasTargets("products"))
	})
}
