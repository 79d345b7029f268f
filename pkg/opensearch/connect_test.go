package opensearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reindexer/pkg/opensearch"
)

func clusterInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"name":"node-1","cluster_name":"search","version":{"distribution":"opensearch","number":"2.11.0"},"tagline":"The OpenSearch Project"}`))
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("connects to healthy cluster", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(clusterInfo))
		t.Cleanup(srv.Close)

		client, err := opensearch.New(context.Background(), opensearch.Config{
			Addresses:    []string{srv.URL},
			DisableRetry: true,
			Timeout:      time.Second,
		})
		require.NoError(t, err)
		require.NotNil(t, client)
		assert.NoError(t, opensearch.Healthcheck(client)(context.Background()))
	})

	t.Run("fails without addresses", func(t *testing.T) {
		t.Parallel()
		_, err := opensearch.New(context.Background(), opensearch.Config{})
		assert.ErrorIs(t, err, opensearch.ErrNoAddresses)
	})

	t.Run("fails on invalid address", func(t *testing.T) {
		t.Parallel()
		_, err := opensearch.New(context.Background(), opensearch.Config{Addresses: []string{"://bad"}})
		assert.ErrorIs(t, err, opensearch.ErrConnectionFailed)
	})

	t.Run("fails when cluster is unreachable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(clusterInfo))
		addr := srv.URL
		srv.Close()

		_, err := opensearch.New(context.Background(), opensearch.Config{
			Addresses:    []string{addr},
			DisableRetry: true,
			Timeout:      time.Second,
		})
		assert.ErrorIs(t, err, opensearch.ErrHealthcheckFailed)
	})
}

func TestHealthcheck_ErrorStatus(t *testing.T) {
	t.Parallel()

	var unhealthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !unhealthy.Load() {
			clusterInfo(w, r)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"cluster_block_exception"}`))
	}))
	t.Cleanup(srv.Close)

	client, err := opensearch.New(context.Background(), opensearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
		Timeout:      time.Second,
	})
	require.NoError(t, err)

	unhealthy.Store(true)
	err = opensearch.Healthcheck(client)(context.Background())
	assert.ErrorIs(t, err, opensearch.ErrHealthcheckFailed)
}
