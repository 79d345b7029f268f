package index_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reindexer/internal/index"
	"github.com/dmitrymomot/reindexer/internal/searchtest"
	"github.com/dmitrymomot/reindexer/pkg/logger"
)

type aliasFunc func(ctx context.Context, alias string) ([]string, error)

func (f aliasFunc) Indices(ctx context.Context, alias string) ([]string, error) { return f(ctx, alias) }

func newManager(t *testing.T) (*index.Manager, *searchtest.Server) {
	t.Helper()
	srv := searchtest.New(t)
	reader := aliasFunc(func(_ context.Context, alias string) ([]string, error) {
		return srv.AliasTargets(alias), nil
	})
	return index.NewManager(srv.Client(t), reader, logger.Discard()), srv
}

var productSchema = index.Schema{
	Shards:   4,
	Replicas: index.ReplicaCount(1),
	Dynamic:  "strict",
	Fields: []index.Field{
		{Name: "id", Type: "long"},
		{Name: "name", Type: "text", Fielddata: true},
	},
}

func TestManager_Exists(t *testing.T) {
	t.Parallel()

	m, srv := newManager(t)
	ctx := context.Background()

	assert.False(t, m.Exists(ctx, "primary_products"))
	srv.CreateIndex("primary_products")
	assert.True(t, m.Exists(ctx, "primary_products"))
}

func TestManager_ExistsTransportError(t *testing.T) {
	t.Parallel()

	m, srv := newManager(t)
	srv.Close()
	assert.False(t, m.Exists(context.Background(), "primary_products"))
}

func TestManager_Ensure(t *testing.T) {
	t.Parallel()

	t.Run("creates missing index", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		require.NoError(t, m.Ensure(context.Background(), "primary_products", productSchema))
		assert.True(t, srv.HasIndex("primary_products"))
		assert.Equal(t, 1, srv.CountRequests(http.MethodPut, "/primary_products"))
	})

	t.Run("no-op when present", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("primary_products")
		require.NoError(t, m.Ensure(context.Background(), "primary_products", productSchema))
		assert.Zero(t, srv.CountRequests(http.MethodPut, "/primary_products"))
	})

	t.Run("create failure", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.FailCreate(http.StatusInternalServerError)
		err := m.Ensure(context.Background(), "primary_products", productSchema)
		assert.ErrorIs(t, err, index.ErrIndexCreate)
		assert.False(t, srv.HasIndex("primary_products"))
	})

	t.Run("creation race counts as success", func(t *testing.T) {
		t.Parallel()
		srv := searchtest.New(t)
		client := srv.Client(t)
		reader := aliasFunc(func(context.Context, string) ([]string, error) { return nil, nil })
		m := index.NewManager(raceTransport{client: client, srv: srv}, reader, nil)

		require.NoError(t, m.Ensure(context.Background(), "primary_products", productSchema))
		assert.True(t, srv.HasIndex("primary_products"))
	})
}

// raceTransport creates the index behind the manager's back right before
// the create request goes out.
type raceTransport struct {
	client interface {
		Perform(*http.Request) (*http.Response, error)
	}
	srv *searchtest.Server
}

func (r raceTransport) Perform(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPut {
		r.srv.CreateIndex("primary_products")
	}
	return r.client.Perform(req)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, srv := newManager(t)
	ctx := context.Background()

	srv.CreateIndex("secondary_products")
	require.NoError(t, m.Delete(ctx, "secondary_products"))
	assert.False(t, srv.HasIndex("secondary_products"))

	require.NoError(t, m.Delete(ctx, "secondary_products"), "missing index is not an error")

	srv.CreateIndex("primary_products")
	srv.FailDelete(http.StatusForbidden)
	assert.ErrorIs(t, m.Delete(ctx, "primary_products"), index.ErrIndexDelete)
	assert.True(t, srv.HasIndex("primary_products"))
}

func TestManager_ResolveTarget(t *testing.T) {
	t.Parallel()

	t.Run("fresh cluster builds primary", func(t *testing.T) {
		t.Parallel()
		m, _ := newManager(t)
		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "primary_products", target.Index)
		assert.Equal(t, "secondary_products", target.Stale)
		assert.Equal(t, index.SlotNone, target.Live)
		assert.False(t, target.StaleExists)
		assert.Empty(t, target.Detach)
	})

	t.Run("alias on primary builds secondary", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("primary_products")
		srv.SetAlias("products", "primary_products")

		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "secondary_products", target.Index)
		assert.Equal(t, "primary_products", target.Stale)
		assert.Equal(t, index.SlotPrimary, target.Live)
		assert.True(t, target.StaleExists)
		assert.True(t, target.StaleAliased())
		assert.Equal(t, []string{"primary_products"}, target.Detach)
	})

	t.Run("alias on secondary builds primary even if primary exists", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("primary_products")
		srv.CreateIndex("secondary_products")
		srv.SetAlias("products", "secondary_products")

		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "primary_products", target.Index)
		assert.Equal(t, index.SlotSecondary, target.Live)
	})

	t.Run("no alias falls back to primary existence", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("primary_products")

		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "secondary_products", target.Index)
		assert.Equal(t, index.SlotPrimary, target.Live)
		assert.False(t, target.StaleAliased())
	})

	t.Run("foreign alias target is detached", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("products_v1")
		srv.SetAlias("products", "products_v1")

		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "primary_products", target.Index)
		assert.Equal(t, []string{"products_v1"}, target.Detach)
		assert.False(t, target.StaleAliased())
	})

	t.Run("alias on both slots rebuilds the older slot", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("primary_products")
		srv.CreateIndex("secondary_products")
		srv.SetAlias("products", "primary_products", "secondary_products")

		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "primary_products", target.Index)
		assert.Equal(t, "secondary_products", target.Stale)
		assert.Equal(t, index.SlotSecondary, target.Live)
		assert.Equal(t, []string{"secondary_products"}, target.Detach)
		assert.True(t, target.StaleAliased())
	})

	t.Run("alias on both slots with an older secondary", func(t *testing.T) {
		t.Parallel()
		m, srv := newManager(t)
		srv.CreateIndex("secondary_products")
		srv.CreateIndex("primary_products")
		srv.SetAlias("products", "primary_products", "secondary_products")

		target, err := m.ResolveTarget(context.Background(), "products")
		require.NoError(t, err)
		assert.Equal(t, "secondary_products", target.Index)
		assert.Equal(t, index.SlotPrimary, target.Live)
		assert.Equal(t, []string{"primary_products"}, target.Detach)
	})

	t.Run("alias lookup failure", func(t *testing.T) {
		t.Parallel()
		srv := searchtest.New(t)
		m := index.NewManager(srv.Client(t), aliasFunc(func(context.Context, string) ([]string, error) {
			return nil, errors.New("connection reset")
		}), nil)

		_, err := m.ResolveTarget(context.Background(), "products")
		assert.ErrorIs(t, err, index.ErrAliasLookup)
	})
}
