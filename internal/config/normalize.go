package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRequests()
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("MIDIBOT_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.SongsFile, err = c.derivePath(c.Paths.SongsFile, defaultSongsFile); err != nil {
		return fmt.Errorf("paths.songs_file: %w", err)
	}
	if c.Paths.AttachmentsDir, err = c.derivePath(c.Paths.AttachmentsDir, defaultFilesDir); err != nil {
		return fmt.Errorf("paths.attachments_dir: %w", err)
	}
	if c.Paths.ExportDir, err = c.derivePath(c.Paths.ExportDir, defaultExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if c.Paths.LogDir, err = c.derivePath(c.Paths.LogDir, defaultLogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// derivePath expands value, falling back to fallback relative to DataDir.
func (c *Config) derivePath(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Join(c.Paths.DataDir, fallback), nil
	}
	return expandPath(value)
}

func (c *Config) normalizeRequests() {
	if c.Requests.MaxOpen == 0 {
		c.Requests.MaxOpen = defaultMaxOpen
	}
	if c.Requests.MaxPerUser == 0 {
		c.Requests.MaxPerUser = defaultMaxPerUser
	}
	if c.Requests.BlockedOrigins == nil {
		c.Requests.BlockedOrigins = DefaultBlockedOrigins()
	}
	origins := make([]BlockedOrigin, 0, len(c.Requests.BlockedOrigins))
	seen := make(map[string]struct{}, len(c.Requests.BlockedOrigins))
	for _, origin := range c.Requests.BlockedOrigins {
		origin.Prefix = strings.TrimSpace(origin.Prefix)
		origin.Reason = strings.TrimSpace(origin.Reason)
		if origin.Prefix == "" {
			continue
		}
		if _, exists := seen[origin.Prefix]; exists {
			continue
		}
		seen[origin.Prefix] = struct{}{}
		if origin.Reason == "" {
			origin.Reason = "that source " + blockedOriginReason
		}
		origins = append(origins, origin)
	}
	c.Requests.BlockedOrigins = origins
}

func (c *Config) normalizeJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	var err error
	if c.Journal.Path, err = c.derivePath(c.Journal.Path, defaultJournal); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("MIDIBOT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
