package catalog

import (
	"errors"
	"strings"

	"midibot/internal/attachments"
	"midibot/internal/faults"
	"midibot/internal/logging"
	"midibot/internal/metadata"
)

// reconcile normalizes records loaded from older data files and syncs the
// collection once if anything changed. It runs before the engine is shared.
func (e *Engine) reconcile() error {
	changed := false
	seen := make(map[string]struct{}, len(e.songs.Data))

	for i := range e.songs.Data {
		song := &e.songs.Data[i]

		if id := strings.TrimSpace(song.ID); id == "" {
			song.ID = e.newID()
			changed = true
		} else if _, dup := seen[id]; dup {
			logging.WarnWithContext(e.logger, "duplicate record id in collection; assigning a new one", "catalog_duplicate_id",
				logging.String(logging.FieldSongID, id),
				logging.String(logging.FieldSong, song.Display()),
				logging.String(logging.FieldErrorHint, "attachments stay with the first record using this id"),
				logging.String(logging.FieldImpact, "the renamed record loses access to shared attachment files"))
			song.ID = e.newID()
			changed = true
		}
		seen[song.ID] = struct{}{}

		if song.Ratings == nil {
			song.Ratings = map[UserID]int{}
			changed = true
		}
		if song.Meta == nil {
			song.Meta = newMeta()
			changed = true
		}

		present, err := e.store.List(song.ID)
		if err != nil {
			return err
		}

		if !song.Kind.Valid() {
			song.Kind = Requested
			for _, kind := range present {
				if kind.Playable() {
					song.Kind = Verified
				}
			}
			changed = true
		}

		if e.reconcileMeta(song, present) {
			changed = true
		}

		if avg := averageRating(song.Ratings); avg != song.Rating {
			song.Rating = avg
			changed = true
		}
	}

	if !changed {
		return nil
	}
	if err := e.songs.Sync(); err != nil {
		return err
	}
	e.logger.Info("catalog reconciled", logging.Int("songs", len(e.songs.Data)))
	return nil
}

// reconcileMeta drops cached metadata for missing files and re-reads every
// stored file, replacing cached entries that no longer describe it.
func (e *Engine) reconcileMeta(song *Song, present []attachments.Kind) bool {
	changed := false
	onDisk := make(map[attachments.Kind]struct{}, len(present))
	for _, kind := range present {
		onDisk[kind] = struct{}{}
	}
	for kind := range song.Meta {
		if _, ok := onDisk[kind]; !ok {
			delete(song.Meta, kind)
			changed = true
		}
	}

	for _, kind := range present {
		path, err := e.store.Path(song.ID, kind)
		if err != nil {
			continue
		}
		info, err := metadata.Extract(path, kind)
		if err != nil {
			logging.WarnWithContext(e.logger, "attachment metadata incomplete", "catalog_metadata_failed",
				logging.String(logging.FieldSongID, song.ID),
				logging.String(logging.FieldSong, song.Display()),
				logging.String(logging.FieldFileKind, kind.Label()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-upload the file if it is damaged"),
				logging.String(logging.FieldImpact, "duplicate detection uses hash and size only"))
			if !errors.Is(err, faults.ErrFormat) {
				continue
			}
		}
		if cached, ok := song.Meta[kind]; ok && cached == info {
			continue
		}
		song.Meta[kind] = info
		changed = true
	}
	return changed
}
