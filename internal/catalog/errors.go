package catalog

import (
	"fmt"

	"midibot/internal/faults"
)

// Duplicate rejection messages, shown to users verbatim.
const (
	reasonDisplayTaken   = "Song already exists in my database"
	reasonAlreadyRequest = "That song has already been requested."
	reasonOriginTaken    = "Song with that URL is already in my database."
)

// DuplicateError reports a collision with an existing record.
type DuplicateError struct {
	// Reason is the user-facing explanation.
	Reason string
	// Existing is the display key of the conflicting record.
	Existing string
	// ExistingKind is the conflicting record's lifecycle state.
	ExistingKind Kind
}

func (e *DuplicateError) Error() string {
	return e.Reason
}

// Is lets errors.Is match faults.ErrDuplicate.
func (e *DuplicateError) Is(target error) bool {
	return target == faults.ErrDuplicate
}

func fileDuplicate(existing Song) *DuplicateError {
	return &DuplicateError{
		Reason:       fmt.Sprintf("This file is a duplicate. `%s` already has this file attached.", existing.Display()),
		Existing:     existing.Display(),
		ExistingKind: existing.Kind,
	}
}

func notFound(operation, ref string) error {
	return faults.Wrap(faults.ErrNotFound, "catalog", operation, fmt.Sprintf("no song matches %q", ref), nil)
}
