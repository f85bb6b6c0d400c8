package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MIDIFile builds a minimal format-1 Standard MIDI File with the given
// number of tracks. Each track holds a single note plus end-of-track, and
// note varies the pitch so callers can produce distinct contents.
func MIDIFile(tracks int, note byte) []byte {
	if tracks < 1 {
		tracks = 1
	}
	out := make([]byte, 0, 14+tracks*20)
	out = append(out, 'M', 'T', 'h', 'd')
	out = binary.BigEndian.AppendUint32(out, 6)
	out = binary.BigEndian.AppendUint16(out, 1)
	out = binary.BigEndian.AppendUint16(out, uint16(tracks))
	out = binary.BigEndian.AppendUint16(out, 480)

	body := []byte{
		0x00, 0x90, note & 0x7f, 0x40, // note on
		0x60, 0x80, note & 0x7f, 0x00, // note off after 96 ticks
		0x00, 0xff, 0x2f, 0x00, // end of track
	}
	for i := 0; i < tracks; i++ {
		out = append(out, 'M', 'T', 'r', 'k')
		out = binary.BigEndian.AppendUint32(out, uint32(len(body)))
		out = append(out, body...)
	}
	return out
}
