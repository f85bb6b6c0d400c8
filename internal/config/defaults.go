package config

const (
	defaultDataDir    = "~/.local/share/midibot"
	defaultSongsFile  = "songs.json"
	defaultFilesDir   = "songs"
	defaultExportDir  = "output_files"
	defaultLogDir     = "logs"
	defaultJournal    = "journal.db"
	defaultMaxOpen    = 50
	defaultMaxPerUser = 2
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
)

const blockedOriginReason = "can't be downloaded at all, so there's no way for volunteers to grab it for you"

// DefaultBlockedOrigins lists origins whose scores cannot be exported by anyone.
func DefaultBlockedOrigins() []BlockedOrigin {
	return []BlockedOrigin{
		{Prefix: "https://musescore.com/official_scores/", Reason: "an \"Official Score\" on MuseScore " + blockedOriginReason},
		{Prefix: "https://musescore.com/official_author/", Reason: "an \"Official Score\" on MuseScore " + blockedOriginReason},
		{Prefix: "https://www.musicnotes.com/", Reason: "a score on Musicnotes " + blockedOriginReason},
		{Prefix: "https://musicnotes.com/", Reason: "a score on Musicnotes " + blockedOriginReason},
	}
}

// Default returns a Config populated with repository defaults. Derived paths
// (songs file, attachment/export/log directories, journal) stay empty and are
// filled from DataDir during normalization. Blocked origins stay nil so a file
// that lists its own replaces the defaults instead of appending to them.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Requests: Requests{
			MaxOpen:    defaultMaxOpen,
			MaxPerUser: defaultMaxPerUser,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
