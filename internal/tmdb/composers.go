package tmdb

import (
	"context"
	"fmt"
	"strings"
)

// composerJobs lists crew jobs that credit a score author, most specific first.
var composerJobs = []string{"original music composer", "composer", "music", "music director"}

// ComposersFromCredits returns up to limit distinct composer names ordered
// by job specificity, then credit order.
func ComposersFromCredits(credits *Credits, limit int) []string {
	if credits == nil || limit <= 0 {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, job := range composerJobs {
		for _, member := range credits.Crew {
			if !strings.EqualFold(strings.TrimSpace(member.Job), job) {
				continue
			}
			name := strings.TrimSpace(member.Name)
			key := strings.ToLower(name)
			if name == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

// Composers looks up the best title match and returns its composers. A title
// with no match yields no names and no error.
func (c *Client) Composers(ctx context.Context, title string, year int, series bool, limit int) ([]string, error) {
	var (
		resp *Response
		err  error
	)
	if series {
		resp, err = c.SearchTV(ctx, title, year)
	} else {
		resp, err = c.SearchMovie(ctx, title, year)
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	best := bestResult(resp.Results, title, year)

	var credits *Credits
	if series {
		credits, err = c.TVCredits(ctx, best.ID)
	} else {
		credits, err = c.MovieCredits(ctx, best.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("credits for %q: %w", best.DisplayTitle(), err)
	}
	return ComposersFromCredits(credits, limit), nil
}

// bestResult prefers an exact title with the requested year, then an exact
// title, then the first (most relevant) result.
func bestResult(results []Result, title string, year int) Result {
	var exact *Result
	for i := range results {
		r := &results[i]
		if !strings.EqualFold(strings.TrimSpace(r.DisplayTitle()), strings.TrimSpace(title)) {
			continue
		}
		if year > 0 && r.Year() == year {
			return *r
		}
		if exact == nil {
			exact = r
		}
	}
	if exact != nil {
		return *exact
	}
	return results[0]
}
