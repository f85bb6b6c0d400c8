package attachments

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"midibot/internal/faults"
	"midibot/internal/fileutil"
	"midibot/internal/logging"
)

const (
	fileMode      = 0o644
	stagingPrefix = ".upload-"
)

// Store reads and writes attachment files under a single content directory.
type Store struct {
	dir       string
	exportDir string
	logger    *slog.Logger
}

// NewStore prepares the content and export directories.
func NewStore(dir, exportDir string, logger *slog.Logger) (*Store, error) {
	dir = strings.TrimSpace(dir)
	exportDir = strings.TrimSpace(exportDir)
	if dir == "" || exportDir == "" {
		return nil, faults.Wrap(faults.ErrStorage, "attachments", "init", "content and export directories are required", nil)
	}
	for _, d := range []string{dir, exportDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, faults.Wrap(faults.ErrStorage, "attachments", "init", "create "+d, err)
		}
	}
	return &Store{
		dir:       dir,
		exportDir: exportDir,
		logger:    logging.NewComponentLogger(logger, "attachments"),
	}, nil
}

// Dir returns the content directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the deterministic location for (id, kind).
func (s *Store) Path(id string, kind Kind) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", faults.Wrap(faults.ErrUnsupportedFormat, "attachments", "path", fmt.Sprintf("unknown kind %q", kind), nil)
	}
	return filepath.Join(s.dir, id+kind.Extension()), nil
}

// Save writes data for (id, kind), replacing any previous content.
func (s *Store) Save(id string, kind Kind, data []byte) error {
	path, err := s.Path(id, kind)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, fileMode); err != nil {
		return faults.Wrap(faults.ErrStorage, "attachments", "save", path, err)
	}
	s.logger.Debug("attachment saved",
		logging.String(logging.FieldSongID, id),
		logging.String(logging.FieldFileKind, kind.Label()),
		logging.Int("bytes", len(data)))
	return nil
}

// Has reports whether a file exists for (id, kind).
func (s *Store) Has(id string, kind Kind) (bool, error) {
	path, err := s.Path(id, kind)
	if err != nil {
		return false, err
	}
	ok, err := fileutil.Exists(path)
	if err != nil {
		return false, faults.Wrap(faults.ErrStorage, "attachments", "stat", path, err)
	}
	return ok, nil
}

// List returns the kinds present for id, in Kinds order.
func (s *Store) List(id string) ([]Kind, error) {
	present := make([]Kind, 0, len(Kinds))
	for _, kind := range Kinds {
		ok, err := s.Has(id, kind)
		if err != nil {
			return nil, err
		}
		if ok {
			present = append(present, kind)
		}
	}
	return present, nil
}

// Delete removes the file for (id, kind). Missing files are not an error.
func (s *Store) Delete(id string, kind Kind) error {
	path, err := s.Path(id, kind)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return faults.Wrap(faults.ErrStorage, "attachments", "delete", path, err)
	}
	return nil
}

// DeleteAll removes every attachment stored for id.
func (s *Store) DeleteAll(id string) error {
	for _, kind := range Kinds {
		if err := s.Delete(id, kind); err != nil {
			return err
		}
	}
	return nil
}

// Stage writes an upload to a temporary file inside the content directory
// and returns its path. The file is invisible to Has and List until Commit.
func (s *Store) Stage(data []byte) (string, error) {
	tmp, err := os.CreateTemp(s.dir, stagingPrefix+"*.tmp")
	if err != nil {
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stage", "create temp file", err)
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stage", "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stage", "close temp file", err)
	}
	if err := os.Chmod(path, fileMode); err != nil {
		_ = os.Remove(path)
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stage", "chmod temp file", err)
	}
	return path, nil
}

// Commit moves a staged file into place for (id, kind), replacing any
// previous content.
func (s *Store) Commit(stagedPath, id string, kind Kind) error {
	path, err := s.Path(id, kind)
	if err != nil {
		return err
	}
	if err := s.checkStaged(stagedPath); err != nil {
		return err
	}
	if err := os.Rename(stagedPath, path); err != nil {
		return faults.Wrap(faults.ErrStorage, "attachments", "commit", path, err)
	}
	s.logger.Debug("attachment committed",
		logging.String(logging.FieldSongID, id),
		logging.String(logging.FieldFileKind, kind.Label()))
	return nil
}

// Stash moves the file stored for (id, kind) aside to a staged path. The
// file comes back with Commit or is dropped with Discard. Stash returns ""
// when nothing is stored.
func (s *Store) Stash(id string, kind Kind) (string, error) {
	path, err := s.Path(id, kind)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stash", path, err)
	}
	tmp, err := os.CreateTemp(s.dir, stagingPrefix+"*.tmp")
	if err != nil {
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stash", "create temp file", err)
	}
	stashed := tmp.Name()
	_ = tmp.Close()
	if err := os.Rename(path, stashed); err != nil {
		_ = os.Remove(stashed)
		return "", faults.Wrap(faults.ErrStorage, "attachments", "stash", path, err)
	}
	return stashed, nil
}

// Discard removes a staged file that will not be committed.
func (s *Store) Discard(stagedPath string) {
	if s.checkStaged(stagedPath) != nil {
		return
	}
	if err := os.Remove(stagedPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(s.logger, "failed to discard staged upload", "attachment_discard_failed",
			logging.String("path", stagedPath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the leftover .upload-*.tmp file manually"),
			logging.String(logging.FieldImpact, "stray temp file remains in the content directory"))
	}
}

func (s *Store) checkStaged(path string) error {
	if filepath.Dir(path) != filepath.Clean(s.dir) || !strings.HasPrefix(filepath.Base(path), stagingPrefix) {
		return faults.Wrap(faults.ErrStorage, "attachments", "commit", fmt.Sprintf("%q is not a staged upload", path), nil)
	}
	return nil
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return faults.Wrap(faults.ErrValidation, "attachments", "path", "record id is empty", nil)
	}
	if id != filepath.Base(id) || id == "." || id == ".." || strings.HasPrefix(id, stagingPrefix) {
		return faults.Wrap(faults.ErrValidation, "attachments", "path", fmt.Sprintf("invalid record id %q", id), nil)
	}
	return nil
}
