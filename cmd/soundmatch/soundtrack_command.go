package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"soundmatch/internal/soundtrack"
)

func newSoundtrackCommand(ctx *commandContext) *cobra.Command {
	var year int
	var series bool
	var composers []string
	var planOnly bool

	cmd := &cobra.Command{
		Use:   "soundtrack <title>",
		Short: "Find the soundtrack album or playlist of a film or series",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := soundtrack.Request{
				Title:     strings.Join(args, " "),
				Year:      year,
				Series:    series,
				Composers: composers,
			}

			sess, err := ctx.openSession(!planOnly)
			if err != nil {
				return err
			}
			defer sess.Close()

			opts := []soundtrack.Option{
				soundtrack.WithConfig(sess.cfg),
				soundtrack.WithLogger(sess.logger),
			}
			if sess.cache != nil {
				opts = append(opts, soundtrack.WithCache(sess.cache))
			}
			if !planOnly && len(composers) == 0 {
				source, err := ctx.deps.newComposers(sess.cfg)
				if err != nil {
					return err
				}
				if source != nil {
					opts = append(opts, soundtrack.WithComposers(source))
				}
			}
			svc := soundtrack.NewService(sess.catalog, opts...)

			if planOnly {
				return printPlan(cmd, ctx, svc.Plan(req))
			}

			result, err := svc.Find(requestContext(cmd), req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			printOutcome(out, result.Outcome, shouldColorize(out))
			if len(result.Composers) > 0 {
				fmt.Fprintf(out, "  Composers: %s\n", strings.Join(result.Composers, ", "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year of the film or series")
	cmd.Flags().BoolVar(&series, "series", false, "Treat the title as a series")
	cmd.Flags().StringSliceVar(&composers, "composer", nil, "Composer hint (repeatable); skips the TMDB lookup")
	cmd.Flags().BoolVar(&planOnly, "plan", false, "Print the planned search queries without searching")
	return cmd
}
