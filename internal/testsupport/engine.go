package testsupport

import (
	"context"
	"testing"

	"midibot/internal/catalog"
	"midibot/internal/config"
	"midibot/internal/logging"
)

// MustOpenEngine opens a catalog engine for tests and registers cleanup.
func MustOpenEngine(t testing.TB, cfg *config.Config, opts ...catalog.Option) *catalog.Engine {
	t.Helper()

	engine, err := catalog.Open(context.Background(), cfg, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = engine.Close()
	})
	return engine
}

// MustAdd adds a verified song and fails the test on error.
func MustAdd(t testing.TB, engine *catalog.Engine, artist, title string) catalog.Song {
	t.Helper()

	song, err := engine.Add(context.Background(), catalog.SongData{Artist: artist, Title: title}, catalog.Verified)
	if err != nil {
		t.Fatalf("Add(%s - %s): %v", artist, title, err)
	}
	return song
}
