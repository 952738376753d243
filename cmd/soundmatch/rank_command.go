package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
)

var rankProfiles = map[string]func() resolve.Profile{
	"soundtrack":      resolve.SoundtrackProfile,
	"radio":           resolve.RadioProfile,
	"this-is":         resolve.ThisIsProfile,
	"genre-artists":   resolve.GenreArtistsProfile,
	"genre-playlists": resolve.GenrePlaylistsProfile,
}

func profileNames() []string {
	names := make([]string, 0, len(rankProfiles))
	for name := range rankProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newRankCommand(ctx *commandContext) *cobra.Command {
	var profileName string
	var year int
	var mediaKind string
	var hints []string
	var contextTerms []string
	var reference string
	var limit int
	var explain bool

	cmd := &cobra.Command{
		Use:   "rank <title>",
		Short: "Rank catalog candidates for a title under a scoring profile",
		Long: "Rank runs a scoring profile directly against the catalog and lists every candidate above the\n" +
			"profile's score floor. Service-level filters such as the radio artist check are not applied.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := rankProfiles[strings.ToLower(strings.TrimSpace(profileName))]
			if !ok {
				return services.Wrap(services.ErrValidation, "rank", "select profile",
					fmt.Sprintf("unknown profile %q (choose from %s)", profileName, strings.Join(profileNames(), ", ")), nil)
			}

			sess, err := ctx.openSession(true)
			if err != nil {
				return err
			}
			defer sess.Close()

			engine := resolve.NewEngine(sess.catalog, services.Tune(build(), sess.cfg), resolve.WithLogger(sess.logger))
			q := resolve.Query{
				Title:       strings.Join(args, " "),
				Year:        year,
				MediaKind:   resolve.ParseMediaKind(mediaKind),
				HintTerms:   hints,
				ReferenceID: reference,
				Context:     contextTerms,
			}
			var cache services.Cache
			if sess.cache != nil {
				cache = sess.cache
			}
			ranked, cached, err := services.CachedRank(requestContext(cmd), engine, cache, q, limit, sess.logger)
			if err != nil {
				return services.Classify("rank", engine.Profile().Name, err)
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, ranked)
			}
			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				fmt.Fprintln(out, "No candidates above the score floor")
				return nil
			}
			if cached {
				fmt.Fprintln(out, "(from cache)")
			}
			fmt.Fprintln(out, rankedTable(ranked, explain, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "soundtrack", "Scoring profile: "+strings.Join(profileNames(), ", "))
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year")
	cmd.Flags().StringVar(&mediaKind, "media", "", "Media kind: movie or series")
	cmd.Flags().StringSliceVar(&hints, "hint", nil, "Contributor hint (repeatable)")
	cmd.Flags().StringSliceVar(&contextTerms, "context", nil, "Broader context term (repeatable)")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference identity used for validation")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum candidates to list")
	cmd.Flags().BoolVar(&explain, "explain", false, "Show the signal breakdown for each candidate")
	return cmd
}
