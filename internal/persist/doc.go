// Package persist keeps a typed collection in memory and mirrors it to a
// JSON file.
//
// A Collection is loaded once with Load and flushed in full with Sync after
// every mutation. Sync writes through a temp file and rename, so a crash
// mid-flush leaves the previous document intact. The collection has no
// locking of its own; its owner serializes access.
package persist
