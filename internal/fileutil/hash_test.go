package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
)

func TestHashFileStableAcrossBuffering(t *testing.T) {
	// Larger than one chunk so the digest spans several reads.
	data := bytes.Repeat([]byte("0123456789abcdef"), HashChunkSize/8)
	path := filepath.Join(t.TempDir(), "big.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	oneByte, err := HashReader(iotest.OneByteReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("HashReader one byte: %v", err)
	}
	halves, err := HashReader(iotest.HalfReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("HashReader halves: %v", err)
	}
	if fromFile != oneByte || fromFile != halves {
		t.Fatalf("digest depends on buffering: %s / %s / %s", fromFile, oneByte, halves)
	}
	if len(fromFile) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(fromFile))
	}
}

func TestHashFileDistinguishesContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := os.WriteFile(a, []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("bravo"), 0o644); err != nil {
		t.Fatal(err)
	}
	ha, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha == hb {
		t.Fatal("expected different digests for different content")
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestHashReaderPropagatesErrors(t *testing.T) {
	if _, err := HashReader(iotest.ErrReader(os.ErrClosed)); err == nil {
		t.Fatal("expected read error to propagate")
	}
}
