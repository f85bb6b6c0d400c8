package catalog

import (
	"slices"

	"midibot/internal/textutil"
)

// Search returns display keys whose lower-cased form contains every
// whitespace-separated token of query and whose kind is one of kinds.
// Results follow collection order.
func (e *Engine) Search(query string, kinds ...Kind) []string {
	tokens := textutil.SearchTokens(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0)
	for _, song := range e.songs.Data {
		if !slices.Contains(kinds, song.Kind) {
			continue
		}
		display := song.Display()
		if textutil.ContainsAll(textutil.SearchKey(display), tokens) {
			out = append(out, display)
		}
	}
	return out
}

// Get returns the record whose display key equals display exactly.
func (e *Engine) Get(display string) (Song, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx := e.indexByDisplay(display)
	if idx < 0 {
		return Song{}, notFound("get", display)
	}
	return e.songs.Data[idx].Clone(), nil
}

// Find returns the record with the given ID.
func (e *Engine) Find(id string) (Song, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	idx := e.indexByID(id)
	if idx < 0 {
		return Song{}, notFound("find", id)
	}
	return e.songs.Data[idx].Clone(), nil
}

// Songs returns copies of every record in kinds, in collection order. No
// kinds means every record.
func (e *Engine) Songs(kinds ...Kind) []Song {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Song, 0, len(e.songs.Data))
	for _, song := range e.songs.Data {
		if kindAllowed(song.Kind, kinds) {
			out = append(out, song.Clone())
		}
	}
	return out
}

// Len returns the number of records.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.songs.Data)
}

// CountByKind counts records in the given lifecycle state.
func (e *Engine) CountByKind(kind Kind) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, song := range e.songs.Data {
		if song.Kind == kind {
			n++
		}
	}
	return n
}

// CountRequestedBy counts open requests made by user.
func (e *Engine) CountRequestedBy(user UserID) int {
	if user == "" {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, song := range e.songs.Data {
		if song.Kind == Requested && song.RequestedBy == user {
			n++
		}
	}
	return n
}

func kindAllowed(kind Kind, allowed []Kind) bool {
	return len(allowed) == 0 || slices.Contains(allowed, kind)
}
