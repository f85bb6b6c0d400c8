// Package catalog owns the song collection and the rules that protect it.
//
// The Engine is the only writer of song records. It rejects duplicate
// display keys, origins, and attachment contents, moves records through
// the requested → unverified → verified lifecycle, aggregates ratings, and
// flushes the collection to disk before any mutating call returns. A failed
// flush restores the in-memory collection to its last durable state.
//
// Callers receive copies of records; changing a returned Song has no effect
// on the catalog.
package catalog
