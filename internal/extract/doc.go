// Package extract reads entity rows from the relational source.
//
// Fetch takes a dedicated *sql.Conn for the duration of one query, so the
// connection is held only while extracting. Rows are materialised as
// positional RawRecord values; type coercion is left to the transform
// package. Failures never escape as panics: the caller receives an empty
// result and an error wrapping ErrSourceUnavailable and decides the run
// outcome.
package extract
