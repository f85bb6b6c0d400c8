package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrDuplicate         = errors.New("duplicate")
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFormat            = errors.New("format error")
	ErrStorage           = errors.New("storage error")
	ErrPersistence       = errors.New("persistence error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a stable classification string for err. Unclassified errors
// report "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

// IsFatal reports whether err means a mutation did not durably commit.
// Everything else is a condition the user can correct and retry.
func IsFatal(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "catalog failure"
	}
	return strings.Join(parts, ": ")
}
