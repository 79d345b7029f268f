// Package catalog defines the indexed entities: producers and products.
//
// Each entry pairs the source query (MySQL text as deployed, plus an ANSI
// rendition for PostgreSQL and SQLite with the same column order), the index
// schema and the row transform. Job turns an entry into a reindex.Job.
package catalog
