package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"midibot/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("disk full")
	err := faults.Wrap(faults.ErrStorage, "attachments", "save", "write file", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrStorage) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"attachments", "save", "write file", "disk full"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrValidation, "", "", "", nil)
	if !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "catalog failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{faults.Wrap(faults.ErrValidation, "catalog", "rate", "bad", nil), "validation"},
		{faults.Wrap(faults.ErrDuplicate, "catalog", "add", "dup", nil), "duplicate"},
		{faults.Wrap(faults.ErrNotFound, "catalog", "get", "", nil), "not_found"},
		{faults.Wrap(faults.ErrUnsupportedFormat, "catalog", "upload", "", nil), "unsupported_format"},
		{faults.Wrap(faults.ErrFormat, "metadata", "midi", "", nil), "format"},
		{faults.Wrap(faults.ErrStorage, "attachments", "save", "", nil), "storage"},
		{fmt.Errorf("outer: %w", faults.Wrap(faults.ErrPersistence, "persist", "sync", "", nil)), "persistence"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := faults.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsFatalOnlyForPersistence(t *testing.T) {
	if !faults.IsFatal(faults.Wrap(faults.ErrPersistence, "persist", "sync", "", nil)) {
		t.Fatal("expected persistence error to be fatal")
	}
	if faults.IsFatal(faults.Wrap(faults.ErrDuplicate, "catalog", "add", "", nil)) {
		t.Fatal("expected duplicate error to be recoverable")
	}
}
