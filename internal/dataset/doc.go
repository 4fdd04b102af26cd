// Package dataset holds the canonical transaction table: the Record
// type with its ingestion-derived features, the immutable Store built
// over cleaned records, and the process-scoped StoreCache that
// deduplicates concurrent loads per source.
package dataset
