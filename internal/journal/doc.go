// Package journal records catalog activity in a SQLite database.
//
// Each successful catalog mutation appends one Entry naming the record, the
// action, and the acting user. The journal is an audit trail only: the JSON
// collection stays the source of truth and nothing is replayed from here.
// The database runs in WAL mode and retries briefly when SQLite reports the
// file as busy.
package journal
