// Package config loads reindexer configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - Load parses the environment into a struct using `env` field tags and
//     caches the result per type, so process-wide settings (search engine,
//     relational source, logging) are parsed exactly once.
//   - LoadPrefixed parses the same struct type under a key prefix without
//     caching. Per-entity run settings use it: PRODUCTS_LIMIT and
//     PRODUCERS_LIMIT fill two independent copies of one struct.
//   - LoadEnv loads explicit dotenv files before parsing; later files win.
//
// # Usage
//
//	if err := config.LoadEnv("/etc/reindexer/.env"); err != nil {
//	    return err
//	}
//
//	var search opensearch.Config
//	if err := config.Load(&search); err != nil {
//	    return err
//	}
//
//	var run reindex.Config
//	if err := config.LoadPrefixed("products", &run); err != nil {
//	    return err
//	}
//
// # Errors
//
// ErrParsingConfig, ErrNilPointer, ErrConfigNotLoaded and ErrLoadingEnvFile are
// sentinel values for errors.Is.
//
// ResetCache and ForceReloadConfig exist for tests that mutate the environment.
package config
