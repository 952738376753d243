package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soundmatch/internal/genre"
)

func newArtistsCommand(ctx *commandContext) *cobra.Command {
	var ancestors []string
	var limit int

	cmd := &cobra.Command{
		Use:   "artists <genre>",
		Short: "Rank the top artists of a genre",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession(true)
			if err != nil {
				return err
			}
			defer sess.Close()

			opts := []genre.Option{genre.WithConfig(sess.cfg), genre.WithLogger(sess.logger)}
			if sess.cache != nil {
				opts = append(opts, genre.WithCache(sess.cache))
			}
			svc := genre.NewService(sess.catalog, opts...)

			result, err := svc.TopArtists(requestContext(cmd), genre.Request{
				Genre:     strings.Join(args, " "),
				Ancestors: ancestors,
				Limit:     limit,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			header := fmt.Sprintf("Genre: %s", result.Genre)
			if len(result.Context) > 0 {
				header += fmt.Sprintf(" (context: %s)", strings.Join(result.Context, ", "))
			}
			if result.Cached {
				header += " [cached]"
			}
			fmt.Fprintln(out, header)
			if len(result.Artists) == 0 {
				fmt.Fprintln(out, "No artists found")
				if len(result.Playlists) > 0 {
					fmt.Fprintln(out, "Genre playlists:")
					fmt.Fprintln(out, rankedTable(result.Playlists, false, shouldColorize(out)))
				}
				return nil
			}
			fmt.Fprintln(out, rankedTable(result.Artists, false, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&ancestors, "ancestor", "a", nil, "Broader genre, nearest first (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", genre.DefaultLimit, "Maximum artists to return")
	return cmd
}
