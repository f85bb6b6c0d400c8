package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"midibot/internal/attachments"
	"midibot/internal/config"
	"midibot/internal/faults"
	"midibot/internal/journal"
	"midibot/internal/logging"
	"midibot/internal/persist"
	"midibot/internal/session"
)

// ErrLocked indicates another process already owns the catalog files.
var ErrLocked = errors.New("catalog is in use by another process")

// Journal receives an entry after every durable mutation.
type Journal interface {
	Append(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithJournal attaches an activity journal. The engine does not close it.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithIDGenerator replaces the UUID generator used for new records.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithClock overrides the time source used for journal entries.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) {
		if fn != nil {
			e.now = fn
		}
	}
}

// Engine serializes access to the song collection and its attachments.
type Engine struct {
	mu      sync.RWMutex
	songs   *persist.Collection[Song]
	store   *attachments.Store
	journal Journal
	logger  *slog.Logger
	newID   func() string
	now     func() time.Time

	lock         *flock.Flock
	ownedJournal *journal.Store
}

// Open locks the catalog files named by cfg, loads the collection, and
// reconciles it against the attachment directory. When the journal is
// enabled and no WithJournal option is given, Open also opens the journal
// database; a journal that cannot be opened is logged and skipped.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("catalog: config is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.SongsFile), 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "catalog", "open", "create catalog directory", err)
	}
	lock := flock.New(cfg.Paths.SongsFile + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrStorage, "catalog", "open", "acquire catalog lock", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, cfg.Paths.SongsFile)
	}

	engine, err := openLocked(ctx, cfg, logger, opts)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	engine.lock = lock
	return engine, nil
}

func openLocked(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts []Option) (*Engine, error) {
	songs, err := persist.Load[Song](cfg.Paths.SongsFile, nil, logger)
	if err != nil {
		return nil, err
	}
	store, err := attachments.NewStore(cfg.Paths.AttachmentsDir, cfg.Paths.ExportDir, logger)
	if err != nil {
		return nil, err
	}

	var owned *journal.Store
	if cfg.Journal.Enabled {
		probe := &Engine{}
		for _, opt := range opts {
			opt(probe)
		}
		if probe.journal == nil {
			owned, err = journal.Open(ctx, cfg.Journal.Path)
			if err != nil {
				logging.WarnWithContext(logging.NewComponentLogger(logger, "catalog"), "activity journal unavailable", "journal_open_failed",
					logging.String("path", cfg.Journal.Path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check journal.path or set journal.enabled = false"),
					logging.String(logging.FieldImpact, "catalog changes will not be recorded in history"))
				owned = nil
			} else {
				opts = append([]Option{WithJournal(owned)}, opts...)
			}
		}
	}

	engine, err := New(songs, store, logger, opts...)
	if err != nil {
		if owned != nil {
			_ = owned.Close()
		}
		return nil, err
	}
	engine.ownedJournal = owned
	return engine, nil
}

// New wraps an already-loaded collection and runs startup reconciliation.
func New(songs *persist.Collection[Song], store *attachments.Store, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if songs == nil || store == nil {
		return nil, errors.New("catalog: collection and attachment store are required")
	}
	e := &Engine{
		songs:  songs,
		store:  store,
		logger: logging.NewComponentLogger(logger, "catalog"),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.reconcile(); err != nil {
		return nil, err
	}
	return e, nil
}

// Close releases the catalog lock and any journal opened by Open.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.ownedJournal != nil {
		errs = append(errs, e.ownedJournal.Close())
		e.ownedJournal = nil
		e.journal = nil
	}
	if e.lock != nil {
		errs = append(errs, e.lock.Unlock())
		e.lock = nil
	}
	return errors.Join(errs...)
}

// History lists journal entries when the engine owns a journal store.
func (e *Engine) History(ctx context.Context, filter journal.Filter) ([]journal.Entry, error) {
	e.mu.RLock()
	j := e.ownedJournal
	e.mu.RUnlock()
	if j == nil {
		return nil, faults.Wrap(faults.ErrStorage, "catalog", "history", "activity journal is disabled", nil)
	}
	return j.List(ctx, filter)
}

func (e *Engine) indexByID(id string) int {
	for i := range e.songs.Data {
		if e.songs.Data[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) indexByDisplay(display string) int {
	for i := range e.songs.Data {
		if e.songs.Data[i].Display() == display {
			return i
		}
	}
	return -1
}

func (e *Engine) snapshot() []Song {
	out := make([]Song, len(e.songs.Data))
	for i, s := range e.songs.Data {
		out[i] = s.Clone()
	}
	return out
}

// commit flushes the collection, restoring snapshot if the flush fails.
// Callers hold e.mu.
func (e *Engine) commit(snapshot []Song) error {
	if err := e.songs.Sync(); err != nil {
		e.songs.Data = snapshot
		return err
	}
	return nil
}

func (e *Engine) record(ctx context.Context, action journal.Action, song Song, detail string) {
	if e.journal == nil {
		return
	}
	actor, _ := session.ActorFromContext(ctx)
	entry := journal.Entry{
		SongID: song.ID,
		Song:   song.Display(),
		Action: action,
		Actor:  actor,
		Detail: detail,
		At:     e.now(),
	}
	if _, err := e.journal.Append(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "failed to record catalog activity", "journal_append_failed",
			logging.String(logging.FieldSongID, song.ID),
			logging.String("action", string(action)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal database"),
			logging.String(logging.FieldImpact, "change is saved but missing from history"))
	}
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, e.logger)
}
