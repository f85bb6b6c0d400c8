package catalog

import (
	"context"

	"midibot/internal/attachments"
	"midibot/internal/journal"
	"midibot/internal/logging"
	"midibot/internal/metadata"
)

func newMeta() map[attachments.Kind]metadata.Info {
	return map[attachments.Kind]metadata.Info{}
}

// AddAttachment stores an uploaded file on the record. The kind comes from
// filename's extension. Content already attached to another record under
// the same kind is rejected with a *DuplicateError and nothing is written.
// Storing a MIDI file on a requested record promotes it to unverified.
func (e *Engine) AddAttachment(ctx context.Context, id, filename string, data []byte) (Song, attachments.Kind, error) {
	kind, err := attachments.KindFromFilename(filename)
	if err != nil {
		return Song{}, "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return Song{}, "", notFound("add attachment", id)
	}

	staged, err := e.store.Stage(data)
	if err != nil {
		return Song{}, "", err
	}
	committed := false
	defer func() {
		if !committed {
			e.store.Discard(staged)
		}
	}()

	info, err := metadata.Extract(staged, kind)
	if err != nil {
		return Song{}, "", err
	}
	for i, other := range e.songs.Data {
		if i == idx {
			continue
		}
		if existing, ok := other.Meta[kind]; ok && existing.Equal(info) {
			return Song{}, "", fileDuplicate(other)
		}
	}

	previous, err := e.store.Stash(id, kind)
	if err != nil {
		return Song{}, "", err
	}
	if err := e.store.Commit(staged, id, kind); err != nil {
		e.restoreAttachment(ctx, id, kind, previous)
		return Song{}, "", err
	}
	committed = true

	snapshot := e.snapshot()
	song := &e.songs.Data[idx]
	if song.Meta == nil {
		song.Meta = newMeta()
	}
	song.Meta[kind] = info
	promoted := false
	if song.Kind == Requested && kind.Playable() {
		song.Kind = Unverified
		promoted = true
	}
	if err := e.commit(snapshot); err != nil {
		e.restoreAttachment(ctx, id, kind, previous)
		return Song{}, "", err
	}
	if previous != "" {
		e.store.Discard(previous)
	}

	updated := e.songs.Data[idx].Clone()
	e.record(ctx, journal.ActionAttachment, updated, kind.Extension())
	e.log(ctx).Info("attachment stored",
		logging.String(logging.FieldSongID, updated.ID),
		logging.String(logging.FieldSong, updated.Display()),
		logging.String(logging.FieldFileKind, kind.Label()),
		logging.Int64("bytes", info.Size),
		logging.Bool("promoted", promoted))
	return updated, kind, nil
}

// restoreAttachment puts back the file stashed before a failed upload, or
// removes the new file when there was none, so the disk matches the
// rolled-back metadata.
func (e *Engine) restoreAttachment(ctx context.Context, id string, kind attachments.Kind, previous string) {
	var err error
	if previous == "" {
		err = e.store.Delete(id, kind)
	} else {
		err = e.store.Commit(previous, id, kind)
	}
	if err != nil {
		logging.WarnWithContext(e.log(ctx), "failed to restore attachment after aborted upload", "attachment_restore_failed",
			logging.String(logging.FieldSongID, id),
			logging.String(logging.FieldFileKind, kind.Label()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "reopen the catalog to re-read attachment metadata"),
			logging.String(logging.FieldImpact, "stored file may differ from cached metadata until restart"))
	}
}

// Attachments lists the kinds stored for the record.
func (e *Engine) Attachments(id string) ([]attachments.Kind, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.indexByID(id) < 0 {
		return nil, notFound("attachments", id)
	}
	return e.store.List(id)
}

// Export copies the record's attachments out under its display key. The
// caller must Close the bundle once the files have been delivered.
func (e *Engine) Export(id string) (*attachments.Bundle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return nil, notFound("export", id)
	}
	song := e.songs.Data[idx]
	return e.store.Export(song.ID, song.Display())
}
