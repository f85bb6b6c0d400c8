package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"midibot/internal/catalog"
	"midibot/internal/requests"
)

type songFlags struct {
	artist  string
	title   string
	version string
	origin  string
}

func (f *songFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.artist, "artist", "", "Artist name")
	cmd.Flags().StringVar(&f.title, "title", "", "Song title")
	cmd.Flags().StringVar(&f.version, "version", "", "Optional version, e.g. \"Piano Solo\"")
	cmd.Flags().StringVar(&f.origin, "origin", "", "MuseScore or other URL the file comes from")
}

func (f *songFlags) data() catalog.SongData {
	return catalog.SongData{Artist: f.artist, Title: f.title, Version: f.version, Origin: f.origin}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var flags songFlags
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a song to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := catalog.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			if kind == catalog.Requested {
				return fmt.Errorf("use `midibot request` to file a request")
			}
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				data := flags.data()
				data.AddedBy = ctx.user()
				song, err := engine.Add(c, data, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Song %q added.\n", song.Display())
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&kindFlag, "type", string(catalog.Verified), "Initial type: verified or unverified")
	_ = cmd.MarkFlagRequired("artist")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newRequestCommand(ctx *commandContext) *cobra.Command {
	var flags songFlags

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request a song",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy := requests.NewPolicy(cfg.Requests)
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				user := ctx.user()
				if err := policy.Admit(engine, user, flags.origin); err != nil {
					return err
				}
				data := flags.data()
				data.RequestedBy = user
				song, err := engine.Add(c, data, catalog.Requested)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Song %q requested.\n", song.Display())
				if song.Origin == "" {
					fmt.Fprintln(out, "No MuseScore or other link was given. Requests with a link are served first.")
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("artist")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var flags songFlags

	cmd := &cobra.Command{
		Use:   "edit SONG",
		Short: "Edit a song's artist, title, version, or origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				data := currentData(song)
				if cmd.Flags().Changed("artist") {
					data.Artist = flags.artist
				}
				if cmd.Flags().Changed("title") {
					data.Title = flags.title
				}
				if cmd.Flags().Changed("version") {
					data.Version = flags.version
				}
				if cmd.Flags().Changed("origin") {
					data.Origin = flags.origin
				}
				updated, err := engine.Update(c, song.ID, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Song %q updated.\n", updated.Display())
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify SONG",
		Short: "Mark a song as verified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				if _, err := engine.Verify(c, song.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Song %q verified.\n", song.Display())
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove SONG",
		Short: "Remove a song and its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				removed, err := engine.Remove(c, song.ID)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("song %q was already removed", song.Display())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Song %q removed.\n", song.Display())
				return nil
			})
		},
	}
}

func newDeclineCommand(ctx *commandContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "decline SONG",
		Short: "Decline an open request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				declined, err := engine.Decline(c, song.ID, reason)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if declined.RequestedBy == "" {
					fmt.Fprintln(out, "Song removed, no requester found.")
					return nil
				}
				fmt.Fprintf(out, "Request %q by %s declined: %s\n", declined.Display(), declined.RequestedBy, reason)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reason shown to the requester")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newRateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rate SONG RATING",
		Short: fmt.Sprintf("Rate a song from %d to %d", catalog.MinRating, catalog.MaxRating),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.requireUser()
			if err != nil {
				return err
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("rating must be a whole number: %w", err)
			}
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				ok, err := engine.Rate(c, song.ID, user, rating)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("rating must be between %d and %d", catalog.MinRating, catalog.MaxRating)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %q %d/%d.\n", song.Display(), rating, catalog.MaxRating)
				return nil
			})
		},
	}
}

func currentData(song catalog.Song) catalog.SongData {
	return catalog.SongData{
		Artist:  song.Artist,
		Title:   song.Title,
		Version: song.Version,
		Origin:  song.Origin,
	}
}
