package main

import (
	"strings"

	"github.com/spf13/cobra"

	"soundmatch/internal/catalog/spotify"
	"soundmatch/internal/radio"
)

func newRadioCommand(ctx *commandContext) *cobra.Command {
	var artistID string
	var kindFlag string
	var candidates bool
	var limit int

	cmd := &cobra.Command{
		Use:   "radio <artist>",
		Short: "Find an artist's radio or This Is playlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := radio.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			req := radio.Request{
				Artist:   strings.Join(args, " "),
				ArtistID: spotify.ArtistURI(artistID),
				Kind:     kind,
			}

			sess, err := ctx.openSession(true)
			if err != nil {
				return err
			}
			defer sess.Close()

			opts := []radio.Option{radio.WithConfig(sess.cfg), radio.WithLogger(sess.logger)}
			if sess.cache != nil {
				opts = append(opts, radio.WithCache(sess.cache))
			}
			svc := radio.NewService(sess.catalog, opts...)
			out := cmd.OutOrStdout()

			if candidates {
				ranked, err := svc.Candidates(requestContext(cmd), req, limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, ranked)
				}
				_, err = out.Write([]byte(rankedTable(ranked, false, shouldColorize(out)) + "\n"))
				return err
			}

			outcome, err := svc.Find(requestContext(cmd), req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, outcome)
			}
			printOutcome(out, outcome, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&artistID, "artist-id", "", "Catalog artist id or URI used to validate playlist tracks")
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", string(radio.KindRadio), "Playlist kind: radio or this-is")
	cmd.Flags().BoolVar(&candidates, "candidates", false, "List ranked candidates instead of picking one")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum candidates to list")
	return cmd
}
