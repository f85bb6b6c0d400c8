package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Action names a catalog mutation.
type Action string

const (
	ActionAdded      Action = "added"
	ActionRequested  Action = "requested"
	ActionUpdated    Action = "updated"
	ActionAttachment Action = "attachment"
	ActionVerified   Action = "verified"
	ActionRemoved    Action = "removed"
	ActionDeclined   Action = "declined"
	ActionRated      Action = "rated"
)

// Entry is one journal row. Song holds the display key at the time of the
// action so history stays readable after renames and removals.
type Entry struct {
	ID     int64     `json:"id"`
	SongID string    `json:"song_id"`
	Song   string    `json:"song"`
	Action Action    `json:"action"`
	Actor  string    `json:"actor,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Filter narrows List results. A zero Filter returns every entry.
type Filter struct {
	SongID string
	Limit  int
}

// Append stores entry and returns it with ID and timestamp populated.
func (s *Store) Append(ctx context.Context, entry Entry) (Entry, error) {
	ctx = ensureContext(ctx)
	entry.SongID = strings.TrimSpace(entry.SongID)
	if entry.SongID == "" {
		return Entry{}, errors.New("journal entry requires a song id")
	}
	if entry.Action == "" {
		return Entry{}, errors.New("journal entry requires an action")
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	entry.At = entry.At.UTC()

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO entries (song_id, song, action, actor, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			entry.SongID,
			entry.Song,
			string(entry.Action),
			nullableString(entry.Actor),
			nullableString(entry.Detail),
			entry.At.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return Entry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	ctx = ensureContext(ctx)

	query := `SELECT id, song_id, song, action, actor, detail, created_at FROM entries`
	var args []any
	if id := strings.TrimSpace(filter.SongID); id != "" {
		query += ` WHERE song_id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var entries []Entry
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry   Entry
		action  string
		actor   sql.NullString
		detail  sql.NullString
		created string
	)
	if err := scanner.Scan(&entry.ID, &entry.SongID, &entry.Song, &action, &actor, &detail, &created); err != nil {
		return Entry{}, err
	}
	entry.Action = Action(action)
	entry.Actor = actor.String
	entry.Detail = detail.String
	at, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	entry.At = at
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
