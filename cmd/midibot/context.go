package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"midibot/internal/catalog"
	"midibot/internal/config"
	"midibot/internal/faults"
	"midibot/internal/logging"
	"midibot/internal/session"
)

type commandContext struct {
	configFlag *string
	userFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, userFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		userFlag:   userFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// user returns the acting user from --user or MIDIBOT_USER.
func (c *commandContext) user() catalog.UserID {
	if c.userFlag != nil {
		if v := strings.TrimSpace(*c.userFlag); v != "" {
			return catalog.UserID(v)
		}
	}
	return catalog.UserID(strings.TrimSpace(os.Getenv("MIDIBOT_USER")))
}

func (c *commandContext) requireUser() (catalog.UserID, error) {
	user := c.user()
	if user == "" {
		return "", fmt.Errorf("this command needs a user; pass --user or set MIDIBOT_USER")
	}
	return user, nil
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg)
}

// withEngine opens the catalog for one command and closes it afterwards.
// The context passed to fn carries the acting user and a request ID.
func (c *commandContext) withEngine(cmd *cobra.Command, fn func(context.Context, *catalog.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = session.WithRequestID(ctx, uuid.NewString())
	ctx = session.WithActor(ctx, string(c.user()))

	engine, err := catalog.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := fn(ctx, engine); err != nil {
		if faults.IsFatal(err) {
			logging.ErrorWithContext(logging.WithContext(ctx, logger), "catalog change not saved", "catalog_persist_failed",
				logging.String("command", cmd.Name()),
				logging.String("error_kind", faults.Kind(err)),
				logging.String(logging.FieldErrorHint, "check free space and permissions on the data directory"),
				logging.Error(err),
			)
		}
		return err
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
