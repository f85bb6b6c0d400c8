package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRequests(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SongsFile) == "" {
		return errors.New("paths.songs_file must be set")
	}
	if strings.TrimSpace(c.Paths.AttachmentsDir) == "" {
		return errors.New("paths.attachments_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		return errors.New("paths.export_dir must be set")
	}
	if filepath.Clean(c.Paths.AttachmentsDir) == filepath.Clean(c.Paths.ExportDir) {
		return errors.New("paths.export_dir must differ from paths.attachments_dir")
	}
	return nil
}

func (c *Config) validateRequests() error {
	if c.Requests.MaxOpen < 0 {
		return errors.New("requests.max_open must not be negative")
	}
	if c.Requests.MaxPerUser < 0 {
		return errors.New("requests.max_per_user must not be negative")
	}
	for i, origin := range c.Requests.BlockedOrigins {
		if !strings.Contains(origin.Prefix, "://") {
			return fmt.Errorf("requests.blocked_origins[%d].prefix %q must be an absolute URL prefix", i, origin.Prefix)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
