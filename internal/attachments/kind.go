package attachments

import (
	"fmt"
	"strings"

	"midibot/internal/faults"
)

// Kind identifies an attachment role by its literal file extension.
type Kind string

const (
	// MIDI is the primary playable file.
	MIDI Kind = ".mid"
	// MuseScore is the notation source.
	MuseScore Kind = ".mscz"
	// PianoVision is overlay data for the PianoVision app.
	PianoVision Kind = ".json"
)

// Kinds lists every recognized kind in presentation order.
var Kinds = []Kind{MIDI, MuseScore, PianoVision}

// Extension returns the file extension, including the leading dot.
func (k Kind) Extension() string {
	return string(k)
}

// Label returns a human-friendly name for the kind.
func (k Kind) Label() string {
	switch k {
	case MIDI:
		return "MIDI"
	case MuseScore:
		return "MuseScore"
	case PianoVision:
		return "PianoVision"
	default:
		return string(k)
	}
}

// Valid reports whether k is one of the recognized kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Playable reports whether k is the primary playable kind.
func (k Kind) Playable() bool {
	return k == MIDI
}

// KindFromFilename resolves the kind from a filename's extension. Matching is
// case-insensitive.
func KindFromFilename(filename string) (Kind, error) {
	lower := strings.ToLower(strings.TrimSpace(filename))
	for _, kind := range Kinds {
		if strings.HasSuffix(lower, kind.Extension()) {
			return kind, nil
		}
	}
	return "", faults.Wrap(faults.ErrUnsupportedFormat, "attachments", "detect kind",
		fmt.Sprintf("%q is not one of %s", filename, ExtensionList()), nil)
}

// ParseKind accepts an extension (".mid", "mid") or a label ("midi").
func ParseKind(value string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "midi":
		return MIDI, nil
	case "musescore":
		return MuseScore, nil
	case "pianovision":
		return PianoVision, nil
	}
	if v != "" && !strings.HasPrefix(v, ".") {
		v = "." + v
	}
	if kind := Kind(v); kind.Valid() {
		return kind, nil
	}
	return "", faults.Wrap(faults.ErrUnsupportedFormat, "attachments", "parse kind",
		fmt.Sprintf("unknown attachment kind %q", value), nil)
}

// ExtensionList renders the recognized extensions for user-facing messages.
func ExtensionList() string {
	exts := make([]string, 0, len(Kinds))
	for _, kind := range Kinds {
		exts = append(exts, kind.Extension())
	}
	return strings.Join(exts, ", ")
}
