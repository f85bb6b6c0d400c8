package attachments

import (
	"fmt"
	"os"
	"path/filepath"

	"midibot/internal/faults"
	"midibot/internal/fileutil"
	"midibot/internal/logging"
	"midibot/internal/textutil"
)

// ExportFile is one attachment copied out under a display name.
type ExportFile struct {
	Kind Kind
	Name string
	Path string
}

// Bytes reads the exported copy.
func (f ExportFile) Bytes() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "attachments", "read export", f.Path, err)
	}
	return data, nil
}

// Bundle holds a record's exported attachments. Close removes them.
type Bundle struct {
	Dir   string
	Files []ExportFile
}

// Paths returns the exported file locations in Kinds order.
func (b *Bundle) Paths() []string {
	out := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		out = append(out, f.Path)
	}
	return out
}

// Close deletes the exported copies. It is safe to call more than once.
func (b *Bundle) Close() error {
	if b == nil || b.Dir == "" {
		return nil
	}
	dir := b.Dir
	b.Dir = ""
	b.Files = nil
	if err := os.RemoveAll(dir); err != nil {
		return faults.Wrap(faults.ErrStorage, "attachments", "cleanup export", dir, err)
	}
	return nil
}

// Export copies every present attachment for id to "<display><ext>" inside
// a fresh directory under the export root. The bundle is empty, not nil,
// when the record has no attachments.
func (s *Store) Export(id, display string) (*Bundle, error) {
	kinds, err := s.List(id)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(s.exportDir, "export-")
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "attachments", "export", "create export directory", err)
	}
	bundle := &Bundle{Dir: dir, Files: make([]ExportFile, 0, len(kinds))}

	base := textutil.SanitizeFileName(display)
	if base == "" {
		base = id
	}

	for _, kind := range kinds {
		src, _ := s.Path(id, kind)
		name := base + kind.Extension()
		dst := filepath.Join(dir, name)
		if err := fileutil.CopyFile(src, dst); err != nil {
			_ = bundle.Close()
			return nil, faults.Wrap(faults.ErrStorage, "attachments", "export", fmt.Sprintf("copy %s", name), err)
		}
		bundle.Files = append(bundle.Files, ExportFile{Kind: kind, Name: name, Path: dst})
	}

	s.logger.Debug("attachments exported",
		logging.String(logging.FieldSongID, id),
		logging.String(logging.FieldSong, display),
		logging.Int("files", len(bundle.Files)))
	return bundle, nil
}
