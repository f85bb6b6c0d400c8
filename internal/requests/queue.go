package requests

import (
	"strings"

	"midibot/internal/catalog"
)

// PreferredOriginPrefix marks origins volunteers can fulfil fastest.
const PreferredOriginPrefix = "https://musescore.com/"

// Queue returns open requests in service order: MuseScore links first,
// then other links, then requests without an origin. Collection order is
// kept within each group. limit <= 0 returns everything.
func Queue(songs []catalog.Song, limit int) []catalog.Song {
	var preferred, linked, bare []catalog.Song
	for _, song := range songs {
		if song.Kind != catalog.Requested {
			continue
		}
		switch {
		case strings.HasPrefix(song.Origin, PreferredOriginPrefix):
			preferred = append(preferred, song)
		case song.Origin != "":
			linked = append(linked, song)
		default:
			bare = append(bare, song)
		}
	}

	out := make([]catalog.Song, 0, len(preferred)+len(linked)+len(bare))
	out = append(out, preferred...)
	out = append(out, linked...)
	out = append(out, bare...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
