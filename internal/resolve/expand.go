package resolve

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"soundmatch/internal/logging"
)

// expand fetches entities related to each seed, one hop deep. Failed lookups
// are logged and skipped. Results keep seed order.
func (e *Engine) expand(ctx context.Context, logger *slog.Logger, seeds []ScoredCandidate) ([]Candidate, error) {
	results := make([][]Candidate, len(seeds))
	var g errgroup.Group
	g.SetLimit(e.profile.Fetch.parallelism())
	for i, seed := range seeds {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			callCtx := ctx
			cancel := func() {}
			if e.profile.Fetch.CallTimeout > 0 {
				callCtx, cancel = context.WithTimeout(ctx, e.profile.Fetch.CallTimeout)
			}
			defer cancel()
			related, err := e.catalog.RelatedOf(callCtx, seed.Candidate.ID)
			if err != nil {
				if ctx.Err() == nil {
					logging.WarnWithContext(logger, "related lookup failed",
						"related_lookup_failed",
						logging.String("seed_id", seed.Candidate.ID),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "catalog may be rate limiting; retry later"),
						logging.String(logging.FieldImpact, "ranking continues without this seed's neighbours"),
					)
				}
				return nil
			}
			for j := range related {
				related[j].Tier = TierRelated
				if related[j].Entity == "" {
					related[j].Entity = seed.Candidate.Entity
				}
			}
			results[i] = related
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, related := range results {
		out = append(out, related...)
	}
	logger.Debug("related expansion complete",
		logging.Int("seeds", len(seeds)),
		logging.Int("related", len(out)),
	)
	return out, nil
}
