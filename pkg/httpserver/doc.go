// Package httpserver exposes the scheduler's operational endpoints.
//
// NewRouter builds a chi router with a liveness check, a readiness check that
// runs every registered Check (search engine, relational source, lock store)
// under a per-check timeout, and the Prometheus /metrics handler. Server runs
// any handler until its context is cancelled and then shuts down gracefully.
//
//	router := httpserver.NewRouter(httpserver.RouterConfig{
//	    Checks: map[string]httpserver.Check{
//	        "opensearch": opensearch.Healthcheck(client),
//	        "source":     sqldb.Healthcheck(db),
//	    },
//	    Metrics: recorder.Handler(),
//	})
//	err := httpserver.NewFromConfig(cfg).Run(ctx, router)
package httpserver
