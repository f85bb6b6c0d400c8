package catalog

import "strings"

// Display renders "Artist - Title", suffixed with " (Version)" when a
// version is set. It is both the uniqueness key and the string searched.
func Display(artist, title, version string) string {
	var b strings.Builder
	b.Grow(len(artist) + len(title) + len(version) + 6)
	b.WriteString(artist)
	b.WriteString(" - ")
	b.WriteString(title)
	if version != "" {
		b.WriteString(" (")
		b.WriteString(version)
		b.WriteByte(')')
	}
	return b.String()
}
