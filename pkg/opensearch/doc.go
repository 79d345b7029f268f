// Package opensearch builds the search engine client used by the reindexer.
//
// Config is populated from OPENSEARCH_* environment variables through
// pkg/config. New constructs an *opensearch.Client with the configured
// retry, timeout and TLS settings and performs an initial Healthcheck, so a
// run never starts against an unreachable cluster.
//
//	var cfg opensearch.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	client, err := opensearch.New(ctx, cfg)
//	if err != nil {
//	    // errors.Is(err, opensearch.ErrHealthcheckFailed)
//	}
//
// Healthcheck is also mounted on the readiness endpoint of the scheduler's
// HTTP server.
package opensearch
