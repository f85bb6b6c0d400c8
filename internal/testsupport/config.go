package testsupport

import (
	"path/filepath"
	"testing"

	"midibot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Every derived path is filled in, so the result is usable without Load.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.SongsFile = filepath.Join(base, "songs.json")
	cfgVal.Paths.AttachmentsDir = filepath.Join(base, "songs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "output_files")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Requests.BlockedOrigins = config.DefaultBlockedOrigins()
	cfgVal.Journal.Enabled = false
	cfgVal.Journal.Path = filepath.Join(base, "journal.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithJournal enables the SQLite activity journal.
func WithJournal() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Journal.Enabled = true
	}
}

// WithRequestLimits overrides the open-request caps.
func WithRequestLimits(maxOpen, maxPerUser int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Requests.MaxOpen = maxOpen
		b.cfg.Requests.MaxPerUser = maxPerUser
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}
