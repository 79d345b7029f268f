// Package bulk loads encoded documents into a physical index through the
// opensearch-go BulkIndexer.
//
// A Loader flushes by byte size with a configurable number of workers (one by
// default, keeping a run sequential). Rejected documents are counted and
// described in Result.Failures and never abort the load. A flush or transport
// failure aborts it with ErrTransport. After a complete load the index is
// refreshed so it is searchable before any alias points at it.
package bulk
