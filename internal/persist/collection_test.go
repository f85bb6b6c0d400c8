package persist_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"midibot/internal/faults"
	"midibot/internal/persist"
)

type item struct {
	Name  string         `json:"name"`
	Score float64        `json:"score,omitempty"`
	Tags  map[string]int `json:"tags"`
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	def := []item{{Name: "seed"}}

	c, err := persist.Load(path, def, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(c.Data, def) {
		t.Fatalf("expected default data, got %#v", c.Data)
	}
	c.Data[0].Name = "changed"
	if def[0].Name != "seed" {
		t.Fatal("collection must not alias the default slice")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Load must not create the file, stat err=%v", err)
	}
}

func TestSyncThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "items.json")

	c, err := persist.Load[item](path, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Data = append(c.Data,
		item{Name: "b", Score: 2.5, Tags: map[string]int{"x": 1}},
		item{Name: "a", Tags: map[string]int{}},
		item{Name: "c", Score: 1, Tags: map[string]int{"y": 2, "z": 3}},
	)
	if err := c.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	reloaded, err := persist.Load[item](path, nil, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(reloaded.Data, c.Data) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", c.Data, reloaded.Data)
	}
	if reloaded.Len() != 3 || reloaded.Path() != path {
		t.Fatalf("unexpected collection state: len=%d path=%q", reloaded.Len(), reloaded.Path())
	}
}

func TestSyncLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	c, err := persist.Load[item](path, nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < 3; i++ {
		c.Data = append(c.Data, item{Name: "n"})
		if err := c.Sync(); err != nil {
			t.Fatalf("Sync: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "items.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only items.json, got %v", names)
	}
}

func TestLoadCorruptFileFailsLoudly(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated", content: `[{"name": "a"`},
		{name: "wrong shape", content: `{"name": "a"}`},
		{name: "garbage", content: "not json"},
		{name: "empty", content: ""},
		{name: "whitespace only", content: "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "items.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := persist.Load[item](path, nil, nil)
			if !errors.Is(err, faults.ErrPersistence) {
				t.Fatalf("expected ErrPersistence, got %v", err)
			}
		})
	}
}

func TestSyncFailureIsPersistenceError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	c, err := persist.Load[item](filepath.Join(dir, "items.json"), nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := os.WriteFile(dir, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	c.Data = append(c.Data, item{Name: "a"})
	if err := c.Sync(); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	if _, err := persist.Load[item]("  ", nil, nil); !errors.Is(err, faults.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
