package requests

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"midibot/internal/catalog"
	"midibot/internal/config"
	"midibot/internal/faults"
)

// Rejection codes.
const (
	CodeQueueFull     = "queue_full"
	CodeUserLimit     = "user_limit"
	CodeBlockedOrigin = "blocked_origin"
)

const notSavedSuffix = " Your request hasn't been saved, feel free to put in a new request with another origin/url."

// Counter reports the counts admission depends on. *catalog.Engine
// satisfies it.
type Counter interface {
	CountByKind(kind catalog.Kind) int
	CountRequestedBy(user catalog.UserID) int
}

// Rejection explains why a request was refused.
type Rejection struct {
	Code    string
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

// Is lets errors.Is match faults.ErrValidation.
func (r *Rejection) Is(target error) bool {
	return target == faults.ErrValidation
}

// Policy caps the request queue and blocks origins that cannot be fulfilled.
type Policy struct {
	MaxOpen        int
	MaxPerUser     int
	BlockedOrigins []config.BlockedOrigin
}

// NewPolicy builds a policy from normalized configuration.
func NewPolicy(cfg config.Requests) Policy {
	blocked := make([]config.BlockedOrigin, len(cfg.BlockedOrigins))
	copy(blocked, cfg.BlockedOrigins)
	return Policy{
		MaxOpen:        cfg.MaxOpen,
		MaxPerUser:     cfg.MaxPerUser,
		BlockedOrigins: blocked,
	}
}

// Admit returns nil when user may file a request for origin, or a
// *Rejection. Origin checks run first so a blocked link is reported even
// when the queue is full. A cap of zero disables that check.
func (p Policy) Admit(counter Counter, user catalog.UserID, origin string) error {
	origin = strings.TrimSpace(origin)
	if origin != "" {
		for _, blocked := range p.BlockedOrigins {
			if blocked.Prefix != "" && strings.HasPrefix(origin, blocked.Prefix) {
				return &Rejection{Code: CodeBlockedOrigin, Message: sentence(blocked.Reason) + notSavedSuffix}
			}
		}
	}
	if p.MaxOpen > 0 && counter.CountByKind(catalog.Requested) >= p.MaxOpen {
		return &Rejection{
			Code:    CodeQueueFull,
			Message: "There are currently too many requests in the queue. Please wait until some have been fulfilled before adding more.",
		}
	}
	if p.MaxPerUser > 0 && counter.CountRequestedBy(user) >= p.MaxPerUser {
		return &Rejection{
			Code: CodeUserLimit,
			Message: fmt.Sprintf("To allow all users to put in requests we only allow %d open requests per user. "+
				"When your open requests have been handled you can add more.", p.MaxPerUser),
		}
	}
	return nil
}

func sentence(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "Requests from that source can't be fulfilled."
	}
	r, size := utf8.DecodeRuneInString(reason)
	reason = string(unicode.ToUpper(r)) + reason[size:]
	if !strings.HasSuffix(reason, ".") {
		reason += "."
	}
	return reason
}
