package metadata

import (
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"midibot/internal/attachments"
	"midibot/internal/faults"
	"midibot/internal/fileutil"
)

// Info summarizes one stored attachment.
type Info struct {
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
	Tracks    int    `json:"tracks,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

// Equal reports whether two files have the same content. Track counts are
// auxiliary and not compared.
func (i Info) Equal(other Info) bool {
	return i.Size == other.Size && i.Hash == other.Hash
}

// Current reports whether i was produced with the active digest algorithm.
func (i Info) Current() bool {
	return i.Algorithm == fileutil.HashAlgorithm && i.Hash != ""
}

// Extract reads path and returns its metadata. When a MIDI file cannot be
// parsed, the returned Info still carries hash and size and the error wraps
// faults.ErrFormat.
func Extract(path string, kind attachments.Kind) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{}, faults.Wrap(faults.ErrStorage, "metadata", "stat", path, err)
	}
	if !stat.Mode().IsRegular() {
		return Info{}, faults.Wrap(faults.ErrStorage, "metadata", "stat", path+" is not a regular file", nil)
	}

	digest, err := fileutil.HashFile(path)
	if err != nil {
		return Info{}, faults.Wrap(faults.ErrStorage, "metadata", "hash", path, err)
	}
	info := Info{Hash: digest, Size: stat.Size(), Algorithm: fileutil.HashAlgorithm}

	if kind.Playable() {
		tracks, err := midiTracks(path)
		if err != nil {
			return info, err
		}
		info.Tracks = tracks
	}
	return info, nil
}

func midiTracks(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, faults.Wrap(faults.ErrStorage, "metadata", "open midi", path, err)
	}
	defer f.Close()

	parsed, err := smf.ReadFrom(f)
	if err != nil {
		return 0, faults.Wrap(faults.ErrFormat, "metadata", "parse midi", "file is not a readable MIDI file", err)
	}
	if len(parsed.Tracks) == 0 {
		return 0, faults.Wrap(faults.ErrFormat, "metadata", "parse midi", fmt.Sprintf("%s contains no tracks", path), nil)
	}
	return len(parsed.Tracks), nil
}
