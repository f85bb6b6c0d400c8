package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"midibot/internal/faults"
	"midibot/internal/journal"
	"midibot/internal/logging"
)

// MinRating and MaxRating bound accepted rating values.
const (
	MinRating = 0
	MaxRating = 5
)

// Add creates a record in the given lifecycle state.
func (e *Engine) Add(ctx context.Context, data SongData, kind Kind) (Song, error) {
	data = data.normalized()
	if err := data.validate(); err != nil {
		return Song{}, err
	}
	if !kind.Valid() {
		return Song{}, faults.Wrap(faults.ErrValidation, "catalog", "add", fmt.Sprintf("unknown song type %q", kind), nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkCollisions(data, ""); err != nil {
		return Song{}, err
	}

	song := Song{
		ID:          e.newID(),
		Artist:      data.Artist,
		Title:       data.Title,
		Version:     data.Version,
		Origin:      data.Origin,
		Kind:        kind,
		RequestedBy: data.RequestedBy,
		AddedBy:     data.AddedBy,
		Ratings:     map[UserID]int{},
		Meta:        newMeta(),
	}

	snapshot := e.snapshot()
	e.songs.Data = append(e.songs.Data, song)
	if err := e.commit(snapshot); err != nil {
		return Song{}, err
	}

	action := journal.ActionAdded
	if kind == Requested {
		action = journal.ActionRequested
	}
	e.record(ctx, action, song, song.Origin)
	e.log(ctx).Info("song added",
		logging.String(logging.FieldSongID, song.ID),
		logging.String(logging.FieldSong, song.Display()),
		logging.String("type", string(kind)))
	return song.Clone(), nil
}

// Update replaces artist, title, version, and origin on the record. Author
// fields are only overwritten when data sets them.
func (e *Engine) Update(ctx context.Context, id string, data SongData) (Song, error) {
	data = data.normalized()
	if err := data.validate(); err != nil {
		return Song{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return Song{}, notFound("update", id)
	}
	if err := e.checkCollisions(data, id); err != nil {
		return Song{}, err
	}

	snapshot := e.snapshot()
	song := &e.songs.Data[idx]
	before := song.Display()
	song.Artist = data.Artist
	song.Title = data.Title
	song.Version = data.Version
	song.Origin = data.Origin
	if data.RequestedBy != "" {
		song.RequestedBy = data.RequestedBy
	}
	if data.AddedBy != "" {
		song.AddedBy = data.AddedBy
	}
	if err := e.commit(snapshot); err != nil {
		return Song{}, err
	}

	updated := e.songs.Data[idx].Clone()
	detail := ""
	if before != updated.Display() {
		detail = "was " + before
	}
	e.record(ctx, journal.ActionUpdated, updated, detail)
	e.log(ctx).Info("song updated",
		logging.String(logging.FieldSongID, updated.ID),
		logging.String(logging.FieldSong, updated.Display()))
	return updated, nil
}

// Verify marks the record verified. Verifying a verified record succeeds
// without change.
func (e *Engine) Verify(ctx context.Context, id string) (Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return Song{}, notFound("verify", id)
	}
	snapshot := e.snapshot()
	previous := e.songs.Data[idx].Kind
	e.songs.Data[idx].Kind = Verified
	if err := e.commit(snapshot); err != nil {
		return Song{}, err
	}

	song := e.songs.Data[idx].Clone()
	e.record(ctx, journal.ActionVerified, song, string(previous))
	e.log(ctx).Info("song verified",
		logging.String(logging.FieldSongID, song.ID),
		logging.String(logging.FieldSong, song.Display()),
		logging.String("previous_type", string(previous)))
	return song, nil
}

// Remove deletes the record and all of its attachments. It reports false
// when no record has the given ID.
func (e *Engine) Remove(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	song, err := e.removeLocked(id)
	if err != nil || song == nil {
		return false, err
	}
	e.record(ctx, journal.ActionRemoved, *song, "")
	e.log(ctx).Info("song removed",
		logging.String(logging.FieldSongID, song.ID),
		logging.String(logging.FieldSong, song.Display()))
	return true, nil
}

// Decline removes an open request and returns it so the requester can be
// told why. Only requested records can be declined.
func (e *Engine) Decline(ctx context.Context, id, reason string) (Song, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return Song{}, notFound("decline", id)
	}
	if kind := e.songs.Data[idx].Kind; kind != Requested {
		return Song{}, faults.Wrap(faults.ErrValidation, "catalog", "decline",
			fmt.Sprintf("only requested songs can be declined; %q is %s", e.songs.Data[idx].Display(), kind), nil)
	}
	song, err := e.removeLocked(id)
	if err != nil {
		return Song{}, err
	}
	reason = strings.TrimSpace(reason)
	e.record(ctx, journal.ActionDeclined, *song, reason)
	e.log(ctx).Info("request declined",
		logging.String(logging.FieldSongID, song.ID),
		logging.String(logging.FieldSong, song.Display()),
		logging.String("reason", reason))
	return *song, nil
}

func (e *Engine) removeLocked(id string) (*Song, error) {
	idx := e.indexByID(id)
	if idx < 0 {
		return nil, nil
	}
	song := e.songs.Data[idx].Clone()

	snapshot := e.snapshot()
	e.songs.Data = slices.Delete(e.songs.Data, idx, idx+1)
	if err := e.commit(snapshot); err != nil {
		return nil, err
	}
	// Files go only after the removal is durable.
	if err := e.store.DeleteAll(song.ID); err != nil {
		logging.WarnWithContext(e.logger, "failed to delete attachments of removed song", "attachment_delete_failed",
			logging.String(logging.FieldSongID, song.ID),
			logging.String(logging.FieldSong, song.Display()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the song's files from the attachments directory"),
			logging.String(logging.FieldImpact, "orphaned files remain on disk"))
	}
	return &song, nil
}

// Rate stores user's rating and recomputes the average. Ratings outside
// [MinRating, MaxRating] are refused with false and change nothing.
func (e *Engine) Rate(ctx context.Context, id string, user UserID, rating int) (bool, error) {
	if rating < MinRating || rating > MaxRating {
		return false, nil
	}
	user = UserID(strings.TrimSpace(string(user)))
	if user == "" {
		return false, faults.Wrap(faults.ErrValidation, "catalog", "rate", "user is required", nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return false, notFound("rate", id)
	}
	snapshot := e.snapshot()
	song := &e.songs.Data[idx]
	if song.Ratings == nil {
		song.Ratings = map[UserID]int{}
	}
	song.Ratings[user] = rating
	song.Rating = averageRating(song.Ratings)
	if err := e.commit(snapshot); err != nil {
		return false, err
	}

	rated := e.songs.Data[idx].Clone()
	e.record(ctx, journal.ActionRated, rated, strconv.Itoa(rating))
	e.log(ctx).Debug("song rated",
		logging.String(logging.FieldSongID, rated.ID),
		logging.String(logging.FieldSong, rated.Display()),
		logging.Int("rating", rating),
		logging.Float64("average", rated.Rating))
	return true, nil
}

// checkCollisions rejects data whose display key or origin belongs to a
// record other than exclude.
func (e *Engine) checkCollisions(data SongData, exclude string) error {
	display := data.Display()
	for _, song := range e.songs.Data {
		if song.ID == exclude {
			continue
		}
		if song.Display() == display {
			return &DuplicateError{Reason: reasonDisplayTaken, Existing: display, ExistingKind: song.Kind}
		}
	}
	if data.Origin == "" {
		return nil
	}
	for _, song := range e.songs.Data {
		if song.ID == exclude || song.Origin != data.Origin {
			continue
		}
		reason := reasonOriginTaken
		if song.Kind == Requested {
			reason = reasonAlreadyRequest
		}
		return &DuplicateError{Reason: reason, Existing: song.Display(), ExistingKind: song.Kind}
	}
	return nil
}
