package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"midibot/internal/catalog"
	"midibot/internal/faults"
	"midibot/internal/journal"
	"midibot/internal/testsupport"
)

var allKinds = []catalog.Kind{catalog.Verified, catalog.Unverified, catalog.Requested}

func TestScenarioAddSearchRate(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	song, err := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "B"}, catalog.Verified)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if song.Display() != "A - B" {
		t.Fatalf("display = %q", song.Display())
	}
	if got := engine.Search("b", allKinds...); !reflect.DeepEqual(got, []string{"A - B"}) {
		t.Fatalf("Search = %v", got)
	}

	for _, r := range []int{4, 2} {
		ok, err := engine.Rate(ctx, song.ID, "u1", r)
		if err != nil || !ok {
			t.Fatalf("Rate(%d) = %v, %v", r, ok, err)
		}
	}
	got, err := engine.Get("A - B")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Rating != 2.0 || !reflect.DeepEqual(got.Ratings, map[catalog.UserID]int{"u1": 2}) {
		t.Fatalf("ratings = %v avg = %v", got.Ratings, got.Rating)
	}
}

func TestAddThenGetReturnsInput(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	data := catalog.SongData{Artist: "Toby Fox", Title: "Megalovania", Version: "Piano", Origin: "https://example.com/m", AddedBy: "9"}

	added, err := engine.Add(context.Background(), data, catalog.Unverified)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if engine.Len() != 1 {
		t.Fatalf("Len = %d, want 1", engine.Len())
	}
	got, err := engine.Get(data.Display())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID == "" || got.ID != added.ID {
		t.Fatalf("unexpected id %q (added %q)", got.ID, added.ID)
	}
	if got.Artist != data.Artist || got.Title != data.Title || got.Version != data.Version ||
		got.Origin != data.Origin || got.AddedBy != data.AddedBy || got.Kind != catalog.Unverified {
		t.Fatalf("record does not match input: %+v", got)
	}
	if _, err := engine.Find(added.ID); err != nil {
		t.Fatalf("Find: %v", err)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "B", Origin: "https://o/1"}, catalog.Requested); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := engine.Add(ctx, catalog.SongData{Artist: "C", Title: "D", Origin: "https://o/2"}, catalog.Verified); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tests := []struct {
		name   string
		data   catalog.SongData
		reason string
	}{
		{name: "display key", data: catalog.SongData{Artist: "A", Title: "B"}, reason: "Song already exists in my database"},
		{name: "display key after trim", data: catalog.SongData{Artist: " A ", Title: "B "}, reason: "Song already exists in my database"},
		{name: "origin of request", data: catalog.SongData{Artist: "X", Title: "Y", Origin: "https://o/1"}, reason: "That song has already been requested."},
		{name: "origin of catalog song", data: catalog.SongData{Artist: "X", Title: "Y", Origin: "https://o/2"}, reason: "Song with that URL is already in my database."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Add(ctx, tt.data, catalog.Verified)
			var dup *catalog.DuplicateError
			if !errors.As(err, &dup) || !errors.Is(err, faults.ErrDuplicate) {
				t.Fatalf("expected DuplicateError, got %v", err)
			}
			if dup.Reason != tt.reason {
				t.Fatalf("Reason = %q, want %q", dup.Reason, tt.reason)
			}
			if engine.Len() != 2 {
				t.Fatalf("collection grew to %d", engine.Len())
			}
		})
	}

	// A distinct version makes a distinct display key.
	if _, err := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "B", Version: "Easy"}, catalog.Verified); err != nil {
		t.Fatalf("Add with version: %v", err)
	}
}

func TestAddValidatesInput(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	for _, data := range []catalog.SongData{{Title: "B"}, {Artist: "A", Title: "  "}} {
		if _, err := engine.Add(context.Background(), data, catalog.Verified); !errors.Is(err, faults.ErrValidation) {
			t.Fatalf("Add(%+v): expected ErrValidation, got %v", data, err)
		}
	}
	if _, err := engine.Add(context.Background(), catalog.SongData{Artist: "A", Title: "B"}, catalog.Kind("lost")); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected ErrValidation for bad kind, got %v", err)
	}
}

func TestUpdateExcludesSelf(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first, err := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "B", Origin: "https://o/1", RequestedBy: "5"}, catalog.Requested)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := engine.Add(ctx, catalog.SongData{Artist: "C", Title: "D", Origin: "https://o/2"}, catalog.Verified); err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated, err := engine.Update(ctx, first.ID, catalog.SongData{Artist: "A", Title: "B", Version: "Hard", Origin: "https://o/1"})
	if err != nil {
		t.Fatalf("Update keeping own origin: %v", err)
	}
	if updated.Display() != "A - B (Hard)" || updated.RequestedBy != "5" || updated.ID != first.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, err := engine.Get("A - B"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("old display key should be gone, got %v", err)
	}

	if _, err := engine.Update(ctx, first.ID, catalog.SongData{Artist: "C", Title: "D"}); !errors.Is(err, faults.ErrDuplicate) {
		t.Fatalf("expected display collision, got %v", err)
	}
	if _, err := engine.Update(ctx, first.ID, catalog.SongData{Artist: "A", Title: "B", Origin: "https://o/2"}); !errors.Is(err, faults.ErrDuplicate) {
		t.Fatalf("expected origin collision, got %v", err)
	}
	if _, err := engine.Update(ctx, "missing", catalog.SongData{Artist: "Q", Title: "R"}); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRateRejectsOutOfRange(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()
	song := testsupport.MustAdd(t, engine, "A", "B")

	if ok, err := engine.Rate(ctx, song.ID, "u1", 3); !ok || err != nil {
		t.Fatalf("Rate: %v %v", ok, err)
	}
	for _, r := range []int{-1, 6, 100} {
		ok, err := engine.Rate(ctx, song.ID, "u2", r)
		if ok || err != nil {
			t.Fatalf("Rate(%d) = %v, %v; want false, nil", r, ok, err)
		}
	}
	got, _ := engine.Find(song.ID)
	if got.Rating != 3 || len(got.Ratings) != 1 {
		t.Fatalf("out-of-range rating changed state: %+v", got)
	}

	if ok, _ := engine.Rate(ctx, song.ID, "u2", 0); !ok {
		t.Fatal("zero is a valid rating")
	}
	if ok, _ := engine.Rate(ctx, song.ID, "u3", 5); !ok {
		t.Fatal("five is a valid rating")
	}
	got, _ = engine.Find(song.ID)
	if got.Rating != 8.0/3.0 {
		t.Fatalf("average = %v, want %v", got.Rating, 8.0/3.0)
	}

	if _, err := engine.Rate(ctx, "missing", "u1", 3); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.Rate(ctx, song.ID, " ", 3); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCollectionRoundTripsThroughReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine, err := catalog.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	a := testsupport.MustAdd(t, engine, "A", "B")
	if _, err := engine.Add(ctx, catalog.SongData{Artist: "C", Title: "D", Origin: "https://o", RequestedBy: "77"}, catalog.Requested); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := engine.Rate(ctx, a.ID, "u1", 4); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if _, _, err := engine.AddAttachment(ctx, a.ID, "a.mscz", []byte("score")); err != nil {
		t.Fatalf("AddAttachment: %v", err)
	}
	before := engine.Songs()
	if err := engine.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenEngine(t, cfg)
	after := reopened.Songs()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("round trip mismatch:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestOpenRefusesSecondOwner(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MustOpenEngine(t, cfg)

	if _, err := catalog.Open(context.Background(), cfg, nil); !errors.Is(err, catalog.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestOpenFailsOnCorruptCollection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.SongsFile, []byte("[{broken"))

	if _, err := catalog.Open(context.Background(), cfg, nil); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	// The lock must be released after a failed open.
	if _, err := catalog.Open(context.Background(), cfg, nil); errors.Is(err, catalog.ErrLocked) {
		t.Fatal("failed Open left the catalog locked")
	}
}

func TestFailedSyncRollsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dbDir := filepath.Join(testsupport.BaseDir(cfg), "db")
	cfg.Paths.SongsFile = filepath.Join(dbDir, "songs.json")
	engine := testsupport.MustOpenEngine(t, cfg)
	song := testsupport.MustAdd(t, engine, "A", "B")

	if err := os.RemoveAll(dbDir); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if err := os.WriteFile(dbDir, []byte("blocker"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	_, err := engine.Add(context.Background(), catalog.SongData{Artist: "C", Title: "D"}, catalog.Verified)
	if !errors.Is(err, faults.ErrPersistence) || !faults.IsFatal(err) {
		t.Fatalf("expected fatal ErrPersistence, got %v", err)
	}
	if engine.Len() != 1 {
		t.Fatalf("failed add must not stay in memory; Len = %d", engine.Len())
	}

	if _, err := engine.Rate(context.Background(), song.ID, "u1", 5); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected ErrPersistence from Rate, got %v", err)
	}
	got, _ := engine.Find(song.ID)
	if len(got.Ratings) != 0 || got.Rating != 0 {
		t.Fatalf("failed rate must be rolled back: %+v", got)
	}
}

func TestOpenCreatesSongsDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.SongsFile = filepath.Join(testsupport.BaseDir(cfg), "nested", "db", "songs.json")
	engine := testsupport.MustOpenEngine(t, cfg)
	testsupport.MustAdd(t, engine, "A", "B")

	if _, err := os.Stat(cfg.Paths.SongsFile); err != nil {
		t.Fatalf("songs file not written: %v", err)
	}
}

func TestConcurrentRateAndAddAreSerialized(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()
	song := testsupport.MustAdd(t, engine, "A", "B")

	const workers = 16
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		added      int
		duplicates int
		failures   []error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	}

	sum := 0
	for i := 0; i < workers; i++ {
		rating := i % (catalog.MaxRating + 1)
		sum += rating
		user := catalog.UserID(fmt.Sprintf("u%d", i))
		wg.Add(2)
		go func() {
			defer wg.Done()
			if ok, err := engine.Rate(ctx, song.ID, user, rating); err != nil || !ok {
				fail(fmt.Errorf("Rate(%s) = %v, %v", user, ok, err))
			}
		}()
		go func() {
			defer wg.Done()
			_, err := engine.Add(ctx, catalog.SongData{Artist: "Race", Title: "Same"}, catalog.Verified)
			switch {
			case err == nil:
				mu.Lock()
				added++
				mu.Unlock()
			case errors.Is(err, faults.ErrDuplicate):
				mu.Lock()
				duplicates++
				mu.Unlock()
			default:
				fail(err)
			}
		}()
	}
	wg.Wait()

	for _, err := range failures {
		t.Error(err)
	}
	if added != 1 || duplicates != workers-1 {
		t.Fatalf("added = %d, duplicates = %d; want 1 and %d", added, duplicates, workers-1)
	}
	if engine.Len() != 2 {
		t.Fatalf("Len = %d, want 2", engine.Len())
	}
	got, err := engine.Find(song.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got.Ratings) != workers {
		t.Fatalf("lost ratings: have %d, want %d", len(got.Ratings), workers)
	}
	if want := float64(sum) / workers; got.Rating != want {
		t.Fatalf("Rating = %v, want %v", got.Rating, want)
	}
}

func TestVerifyAndCounts(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	r1, _ := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "1", RequestedBy: "u1"}, catalog.Requested)
	if _, err := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "2", RequestedBy: "u1"}, catalog.Requested); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := engine.Add(ctx, catalog.SongData{Artist: "A", Title: "3", RequestedBy: "u2"}, catalog.Requested); err != nil {
		t.Fatalf("Add: %v", err)
	}
	testsupport.MustAdd(t, engine, "A", "4")

	if n := engine.CountByKind(catalog.Requested); n != 3 {
		t.Fatalf("CountByKind(requested) = %d", n)
	}
	if n := engine.CountRequestedBy("u1"); n != 2 {
		t.Fatalf("CountRequestedBy(u1) = %d", n)
	}

	verified, err := engine.Verify(ctx, r1.ID)
	if err != nil || verified.Kind != catalog.Verified {
		t.Fatalf("Verify = %+v, %v", verified, err)
	}
	if _, err := engine.Verify(ctx, r1.ID); err != nil {
		t.Fatalf("second Verify: %v", err)
	}
	if n := engine.CountRequestedBy("u1"); n != 1 {
		t.Fatalf("CountRequestedBy(u1) after verify = %d", n)
	}
	if n := engine.CountByKind(catalog.Verified); n != 2 {
		t.Fatalf("CountByKind(verified) = %d", n)
	}
	if _, err := engine.Verify(ctx, "missing"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchFiltersAndOrders(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	ctx := context.Background()

	for _, d := range []struct {
		data catalog.SongData
		kind catalog.Kind
	}{
		{catalog.SongData{Artist: "Zed", Title: "Moon River"}, catalog.Verified},
		{catalog.SongData{Artist: "Alpha", Title: "River Flows In You"}, catalog.Requested},
		{catalog.SongData{Artist: "Yiruma", Title: "River Flows In You", Version: "Slow"}, catalog.Unverified},
		{catalog.SongData{Artist: "Café", Title: "Tango"}, catalog.Verified},
	} {
		if _, err := engine.Add(ctx, d.data, d.kind); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	tests := []struct {
		query string
		kinds []catalog.Kind
		want  []string
	}{
		{"river", allKinds, []string{"Zed - Moon River", "Alpha - River Flows In You", "Yiruma - River Flows In You (Slow)"}},
		{"you RIVER", allKinds, []string{"Alpha - River Flows In You", "Yiruma - River Flows In You (Slow)"}},
		{"river", []catalog.Kind{catalog.Verified}, []string{"Zed - Moon River"}},
		{"slow flows", []catalog.Kind{catalog.Unverified, catalog.Requested}, []string{"Yiruma - River Flows In You (Slow)"}},
		{"CAFÉ", allKinds, []string{"Café - Tango"}},
		{"", []catalog.Kind{catalog.Requested}, []string{"Alpha - River Flows In You"}},
		{"nothing", allKinds, []string{}},
		{"river", nil, []string{}},
	}
	for _, tt := range tests {
		if got := engine.Search(tt.query, tt.kinds...); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("Search(%q, %v) = %v, want %v", tt.query, tt.kinds, got, tt.want)
		}
	}
}

func TestJournalFailureDoesNotFailMutation(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t), catalog.WithJournal(failingJournal{}))
	if _, err := engine.Add(context.Background(), catalog.SongData{Artist: "A", Title: "B"}, catalog.Verified); err != nil {
		t.Fatalf("Add with failing journal: %v", err)
	}
	if engine.Len() != 1 {
		t.Fatalf("Len = %d", engine.Len())
	}
}

func TestSongsReturnsCopies(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	song := testsupport.MustAdd(t, engine, "A", "B")
	if _, err := engine.Rate(context.Background(), song.ID, "u1", 1); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	list := engine.Songs(catalog.Verified)
	list[0].Artist = "mutated"
	list[0].Ratings["u1"] = 5

	got, _ := engine.Find(song.ID)
	if got.Artist != "A" || got.Ratings["u1"] != 1 {
		t.Fatalf("engine state changed through a returned copy: %+v", got)
	}
	if n := len(engine.Songs(catalog.Requested)); n != 0 {
		t.Fatalf("Songs(requested) returned %d records", n)
	}
}

func TestAttachmentsRequireKnownSong(t *testing.T) {
	engine := testsupport.MustOpenEngine(t, testsupport.NewConfig(t))
	if _, err := engine.Attachments("missing"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := engine.Export("missing"); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := engine.AddAttachment(context.Background(), "missing", "x.mid", testsupport.MIDIFile(1, 1)); !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	kinds, _ := engine.Attachments(testsupport.MustAdd(t, engine, "A", "B").ID)
	if len(kinds) != 0 {
		t.Fatalf("new song has attachments %v", kinds)
	}
}

type failingJournal struct{}

func (failingJournal) Append(context.Context, journal.Entry) (journal.Entry, error) {
	return journal.Entry{}, errors.New("journal offline")
}
