package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"midibot/internal/attachments"
	"midibot/internal/faults"
	"midibot/internal/metadata"
)

// Kind is a record's lifecycle state.
type Kind string

const (
	Requested  Kind = "requested"
	Unverified Kind = "unverified"
	Verified   Kind = "verified"
)

// AllKinds lists every lifecycle state.
var AllKinds = []Kind{Verified, Unverified, Requested}

// Valid reports whether k is a known lifecycle state.
func (k Kind) Valid() bool {
	switch k {
	case Requested, Unverified, Verified:
		return true
	default:
		return false
	}
}

// ParseKind converts user input into a Kind.
func ParseKind(value string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !k.Valid() {
		return "", faults.Wrap(faults.ErrValidation, "catalog", "parse kind", fmt.Sprintf("unknown song type %q", value), nil)
	}
	return k, nil
}

// UserID identifies a chat user. Older data files stored numeric IDs; both
// forms decode to the same string.
type UserID string

// UnmarshalJSON accepts strings, numbers, and null.
func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*u = UserID(n.String())
	return nil
}

// Song is one catalog record. JSON names match the bot's historical data
// file so existing catalogs load unchanged.
type Song struct {
	ID          string                             `json:"id"`
	Artist      string                             `json:"artist"`
	Title       string                             `json:"song"`
	Version     string                             `json:"version"`
	Origin      string                             `json:"origin"`
	Kind        Kind                               `json:"type"`
	RequestedBy UserID                             `json:"requested_by,omitempty"`
	AddedBy     UserID                             `json:"added_by,omitempty"`
	Ratings     map[UserID]int                     `json:"ratings"`
	Rating      float64                            `json:"rating,omitempty"`
	Meta        map[attachments.Kind]metadata.Info `json:"meta"`
}

// Display returns the record's display key.
func (s Song) Display() string {
	return Display(s.Artist, s.Title, s.Version)
}

// Clone returns a deep copy of s.
func (s Song) Clone() Song {
	out := s
	out.Ratings = make(map[UserID]int, len(s.Ratings))
	for k, v := range s.Ratings {
		out.Ratings[k] = v
	}
	out.Meta = make(map[attachments.Kind]metadata.Info, len(s.Meta))
	for k, v := range s.Meta {
		out.Meta[k] = v
	}
	return out
}

// SongData is the caller-supplied field set for creating or editing a record.
type SongData struct {
	Artist      string
	Title       string
	Version     string
	Origin      string
	RequestedBy UserID
	AddedBy     UserID
}

// Display returns the display key the data would produce.
func (d SongData) Display() string {
	return Display(d.Artist, d.Title, d.Version)
}

func (d SongData) normalized() SongData {
	d.Artist = strings.TrimSpace(d.Artist)
	d.Title = strings.TrimSpace(d.Title)
	d.Version = strings.TrimSpace(d.Version)
	d.Origin = strings.TrimSpace(d.Origin)
	d.RequestedBy = UserID(strings.TrimSpace(string(d.RequestedBy)))
	d.AddedBy = UserID(strings.TrimSpace(string(d.AddedBy)))
	return d
}

func (d SongData) validate() error {
	if d.Artist == "" {
		return faults.Wrap(faults.ErrValidation, "catalog", "validate", "artist is required", nil)
	}
	if d.Title == "" {
		return faults.Wrap(faults.ErrValidation, "catalog", "validate", "title is required", nil)
	}
	return nil
}

func averageRating(ratings map[UserID]int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, v := range ratings {
		sum += v
	}
	return float64(sum) / float64(len(ratings))
}
