package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"midibot/internal/faults"
	"midibot/internal/fileutil"
	"midibot/internal/logging"
)

const fileMode = 0o644

// Collection is an ordered, JSON-backed sequence of T.
type Collection[T any] struct {
	// Data is mutated directly by the owner; call Sync to persist.
	Data []T

	path   string
	logger *slog.Logger
}

// Load reads path into a new collection. A missing file yields a copy of
// def. An empty file or content that cannot be decoded fails with
// faults.ErrPersistence.
func Load[T any](path string, def []T, logger *slog.Logger) (*Collection[T], error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, faults.Wrap(faults.ErrPersistence, "persist", "load", "collection path not configured", nil)
	}
	logger = logging.NewComponentLogger(logger, "persist")

	c := &Collection[T]{path: path, logger: logger}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Data = cloneSlice(def)
			logger.Debug("collection file missing; starting from default", logging.String("path", path))
			return c, nil
		}
		return nil, faults.Wrap(faults.ErrPersistence, "persist", "load", "read "+path, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		// Sync never writes an empty file.
		return nil, faults.Wrap(faults.ErrPersistence, "persist", "load", path+" is empty", nil)
	}

	var data []T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, faults.Wrap(faults.ErrPersistence, "persist", "load", "decode "+path, err)
	}
	if data == nil {
		data = []T{}
	}
	c.Data = data

	logger.Debug("collection loaded", logging.String("path", path), logging.Int("items", len(data)))
	return c, nil
}

// Path returns the backing file location.
func (c *Collection[T]) Path() string {
	return c.path
}

// Len returns the number of items currently held in memory.
func (c *Collection[T]) Len() int {
	return len(c.Data)
}

// Sync serializes the full collection and atomically replaces the backing
// file.
func (c *Collection[T]) Sync() error {
	data := c.Data
	if data == nil {
		data = []T{}
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return faults.Wrap(faults.ErrPersistence, "persist", "sync", "encode collection", err)
	}
	payload = append(payload, '\n')

	if err := fileutil.WriteFileAtomic(c.path, payload, fileMode); err != nil {
		return faults.Wrap(faults.ErrPersistence, "persist", "sync", "write "+c.path, err)
	}
	return nil
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
