package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"midibot/internal/attachments"
	"midibot/internal/catalog"
	"midibot/internal/journal"
	"midibot/internal/requests"
)

type songView struct {
	ID          string             `json:"id"`
	Display     string             `json:"display"`
	Artist      string             `json:"artist"`
	Title       string             `json:"title"`
	Version     string             `json:"version,omitempty"`
	Origin      string             `json:"origin,omitempty"`
	Type        catalog.Kind       `json:"type"`
	RequestedBy string             `json:"requested_by,omitempty"`
	AddedBy     string             `json:"added_by,omitempty"`
	Rating      float64            `json:"rating"`
	Ratings     int                `json:"ratings"`
	Files       []attachments.Kind `json:"files"`
}

func newSongView(song catalog.Song, files []attachments.Kind) songView {
	if files == nil {
		files = []attachments.Kind{}
	}
	return songView{
		ID:          song.ID,
		Display:     song.Display(),
		Artist:      song.Artist,
		Title:       song.Title,
		Version:     song.Version,
		Origin:      song.Origin,
		Type:        song.Kind,
		RequestedBy: string(song.RequestedBy),
		AddedBy:     string(song.AddedBy),
		Rating:      song.Rating,
		Ratings:     len(song.Ratings),
		Files:       files,
	}
}

func parseKinds(values []string) ([]catalog.Kind, error) {
	kinds := make([]catalog.Kind, 0, len(values))
	for _, v := range values {
		kind, err := catalog.ParseKind(v)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func fileLabels(files []attachments.Kind) string {
	if len(files) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(files))
	for _, f := range files {
		labels = append(labels, f.Label())
	}
	return strings.Join(labels, ", ")
}

func formatRating(song catalog.Song) string {
	if len(song.Ratings) == 0 {
		return "-"
	}
	return strconv.FormatFloat(song.Rating, 'f', 1, 64)
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var typeFlags []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Find songs whose name contains every search word",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(typeFlags)
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(_ context.Context, engine *catalog.Engine) error {
				if len(kinds) == 0 {
					kinds = catalog.AllKinds
				}
				results := engine.Search(strings.Join(args, " "), kinds...)
				if asJSON {
					return writeJSON(cmd, results)
				}
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					fmt.Fprintln(out, "No songs found.")
					return nil
				}
				for _, display := range results {
					fmt.Fprintln(out, display)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&typeFlags, "type", "t", nil, "Restrict to types (verified, unverified, requested)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show SONG",
		Short: "Show details for a song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(_ context.Context, engine *catalog.Engine) error {
				song, err := engine.Get(args[0])
				if err != nil {
					return err
				}
				files, err := engine.Attachments(song.ID)
				if err != nil {
					return err
				}
				view := newSongView(song, files)
				if asJSON {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, view.Display)
				fmt.Fprintf(out, "  Type:     %s\n", view.Type)
				fmt.Fprintf(out, "  Rating:   %s (%d ratings)\n", formatRating(song), view.Ratings)
				fmt.Fprintf(out, "  Files:    %s\n", fileLabels(files))
				if view.Origin != "" {
					fmt.Fprintf(out, "  Origin:   %s\n", view.Origin)
				}
				if view.RequestedBy != "" {
					fmt.Fprintf(out, "  Requested by: %s\n", view.RequestedBy)
				}
				if view.AddedBy != "" {
					fmt.Fprintf(out, "  Added by: %s\n", view.AddedBy)
				}
				fmt.Fprintf(out, "  ID:       %s\n", view.ID)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var typeFlags []string
	var byRating bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List songs in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(typeFlags)
			if err != nil {
				return err
			}
			return ctx.withEngine(cmd, func(_ context.Context, engine *catalog.Engine) error {
				songs := engine.Songs(kinds...)
				if byRating {
					catalog.SortByRating(songs)
				}
				views := make([]songView, 0, len(songs))
				rows := make([][]string, 0, len(songs))
				for _, song := range songs {
					files, err := engine.Attachments(song.ID)
					if err != nil {
						return err
					}
					views = append(views, newSongView(song, files))
					rows = append(rows, []string{song.Display(), string(song.Kind), formatRating(song), fileLabels(files)})
				}
				if asJSON {
					return writeJSON(cmd, views)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The catalog is empty.")
					return nil
				}
				writeRows(cmd.OutOrStdout(), []string{"Song", "Type", "Rating", "Files"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&typeFlags, "type", "t", nil, "Restrict to types (verified, unverified, requested)")
	cmd.Flags().BoolVar(&byRating, "by-rating", false, "Sort by average rating, highest first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRequestsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List open requests in the order volunteers should take them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(_ context.Context, engine *catalog.Engine) error {
				queue := requests.Queue(engine.Songs(catalog.Requested), limit)
				if asJSON {
					views := make([]songView, 0, len(queue))
					for _, song := range queue {
						views = append(views, newSongView(song, nil))
					}
					return writeJSON(cmd, views)
				}
				if len(queue) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The request queue is empty. Thanks for checking!")
					return nil
				}
				rows := make([][]string, 0, len(queue))
				for i, song := range queue {
					origin := song.Origin
					if origin == "" {
						origin = "-"
					}
					requester := string(song.RequestedBy)
					if requester == "" {
						requester = "-"
					}
					rows = append(rows, []string{strconv.Itoa(i + 1), song.Display(), origin, requester})
				}
				writeRows(cmd.OutOrStdout(), []string{"#", "Song", "Origin", "Requested by"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft})
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of requests to show (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [SONG]",
		Short: "Show recent catalog activity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(c context.Context, engine *catalog.Engine) error {
				filter := journal.Filter{Limit: limit}
				if len(args) == 1 {
					song, err := engine.Get(args[0])
					if err != nil {
						return err
					}
					filter.SongID = song.ID
				}
				entries, err := engine.History(c, filter)
				if err != nil {
					return err
				}
				if asJSON {
					if entries == nil {
						entries = []journal.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No activity recorded.")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					actor := e.Actor
					if actor == "" {
						actor = "-"
					}
					rows = append(rows, []string{e.At.Local().Format("2006-01-02 15:04"), string(e.Action), e.Song, actor, e.Detail})
				}
				writeRows(cmd.OutOrStdout(), []string{"When", "Action", "Song", "User", "Detail"}, rows, nil)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
