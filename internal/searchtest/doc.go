// Package searchtest provides an in-memory fake of the OpenSearch REST API
// for tests.
//
// The fake covers cluster info, index exists/create/delete/refresh, alias
// read and update, and bulk indexing. Mappings with dynamic:strict reject
// documents carrying unknown fields. Faults can be injected per endpoint so
// failure paths of the reindex pipeline can be driven through the real
// opensearch-go client.
package searchtest
