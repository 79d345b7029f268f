// Package logger builds *slog.Logger values for the reindexer.
//
// New takes functional options selecting the output format, level, the
// environment preset and ContextExtractor callbacks. When extractors are
// registered, every record is enriched from its context before it is written. The reindex pipeline uses this to stamp
// each line with the run id without threading a logger through every call.
//
// attr.go holds constructors for the attribute keys used across the module
// (entity, index, alias, phase, state, run_id, records) so that log queries
// stay stable.
//
// # Usage
//
//	var cfg logger.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
//	log := logger.New(
//	    logger.WithConfig(cfg),
//	    logger.WithContextExtractors(reindex.RunIDExtractor),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "alias swapped",
//	    logger.Alias("products"),
//	    logger.Index("secondary_products"),
//	)
//
// Error returns an empty attribute for a nil error, so it can be passed
// unconditionally.
package logger
