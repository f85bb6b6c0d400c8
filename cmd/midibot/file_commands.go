package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"midibot/internal/catalog"
	"midibot/internal/fileutil"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var origin string

	cmd := &cobra.Command{
		Use:   "upload SONG FILE...",
		Short: "Attach MIDI, MuseScore, or PianoVision files to a song",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Read everything first so the engine only sees complete uploads.
			payloads := make([][]byte, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				payloads = append(payloads, data)
			}

			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				wasRequested := song.Kind == catalog.Requested

				if cmd.Flags().Changed("origin") {
					data := currentData(song)
					data.Origin = origin
					if song, err = engine.Update(c, song.ID, data); err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				for i, path := range args[1:] {
					updated, kind, err := engine.AddAttachment(c, song.ID, filepath.Base(path), payloads[i])
					if err != nil {
						return fmt.Errorf("%s: %w", filepath.Base(path), err)
					}
					song = updated
					fmt.Fprintf(out, "Stored %s file for %q.\n", kind.Label(), song.Display())
				}

				if wasRequested && song.Kind != catalog.Requested && song.RequestedBy != "" {
					fmt.Fprintf(out, "Requested by %s: the song has been uploaded and is awaiting verification.\n", song.RequestedBy)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "Set the song's origin URL before attaching")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "download SONG",
		Short: "Copy a song's files to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(dest)
			if target == "" {
				target = "."
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create destination: %w", err)
			}
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				bundle, err := engine.Export(song.ID)
				if err != nil {
					return err
				}
				defer bundle.Close()

				out := cmd.OutOrStdout()
				if len(bundle.Files) == 0 {
					fmt.Fprintf(out, "Song %q has no files yet.\n", song.Display())
					return nil
				}
				for _, file := range bundle.Files {
					dst := filepath.Join(target, file.Name)
					if err := fileutil.CopyFile(file.Path, dst); err != nil {
						return fmt.Errorf("copy %s: %w", file.Name, err)
					}
					fmt.Fprintln(out, dst)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory (default: current directory)")
	return cmd
}
