package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
)

// printOutcome writes a human summary of a single resolution.
func printOutcome(w io.Writer, out services.Outcome, color bool) {
	res := out.Resolution
	source := "live"
	if out.Cached {
		source = "cache"
	}
	if !res.Accepted || res.Match == nil {
		fmt.Fprintf(w, "%s %s (%s)\n", colorize("No match:", ansiYellow, color), res.Reason, source)
		return
	}
	match := res.Match
	fmt.Fprintf(w, "%s %s %q (%s)\n", colorize("Matched", ansiGreen, color), res.Entity, match.Candidate.DisplayName, source)
	fmt.Fprintf(w, "  ID:        %s\n", match.Candidate.ID)
	fmt.Fprintf(w, "  Score:     %s\n", formatScore(match.Score))
	fmt.Fprintf(w, "  Evidence:  %s\n", match.Signals.Evidence)
	fmt.Fprintf(w, "  Tier:      %d\n", match.Candidate.Tier)
	if len(match.Candidate.Contributors) > 0 {
		fmt.Fprintf(w, "  Artists:   %s\n", strings.Join(match.Candidate.Contributors, ", "))
	}
	if v := res.Validation; v != nil {
		fmt.Fprintf(w, "  Validated: %d/%d member hits (%.0f%%)\n", v.Hits, v.Sampled, v.HitRatio*100)
	}
}

// rankedTable renders a ranking; explain adds the per-signal breakdown.
func rankedTable(ranked []resolve.ScoredCandidate, explain, fancy bool) string {
	headers := []string{"#", "Name", "Score", "Evidence", "Tier", "ID"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft}
	if explain {
		headers = append(headers, "Sim", "Kw", "Neg", "Struct", "Year", "Hint", "Pop")
		for i := 0; i < 7; i++ {
			aligns = append(aligns, alignRight)
		}
	}
	rows := make([][]string, 0, len(ranked))
	for i, sc := range ranked {
		row := []string{
			strconv.Itoa(i + 1),
			sc.Candidate.DisplayName,
			formatScore(sc.Score),
			sc.Signals.Evidence.String(),
			strconv.Itoa(sc.Candidate.Tier),
			sc.Candidate.ID,
		}
		if explain {
			s := sc.Signals
			row = append(row,
				formatScore(s.Similarity),
				formatScore(s.Keyword),
				formatScore(s.Negative),
				formatScore(s.Structure),
				formatScore(s.Temporal),
				formatScore(s.ContributorHint),
				formatScore(s.Popularity),
			)
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, aligns, fancy)
}
