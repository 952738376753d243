package resolve

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"soundmatch/internal/logging"
)

// fetcher runs query variants against the search port tier by tier.
type fetcher struct {
	searcher Searcher
	policy   FetchPolicy
	logger   *slog.Logger
}

// searchGroup is one variant text with its scopes in fallback order.
type searchGroup struct {
	text   string
	tier   int
	scopes []string
}

// fetchStats summarizes one fetch for logging.
type fetchStats struct {
	Calls    int
	Failures int
	LastTier int
}

func groupVariants(variants []QueryVariant) [][]searchGroup {
	byTier := map[int][]searchGroup{}
	type key struct {
		text string
		tier int
	}
	index := map[key]int{}
	maxTier := -1
	for _, v := range variants {
		k := key{v.Text, v.Tier}
		if i, ok := index[k]; ok {
			byTier[v.Tier][i].scopes = append(byTier[v.Tier][i].scopes, v.Scope)
			continue
		}
		index[k] = len(byTier[v.Tier])
		byTier[v.Tier] = append(byTier[v.Tier], searchGroup{text: v.Text, tier: v.Tier, scopes: []string{v.Scope}})
		maxTier = max(maxTier, v.Tier)
	}
	tiers := make([][]searchGroup, maxTier+1)
	for tier, groups := range byTier {
		tiers[tier] = groups
	}
	return tiers
}

// fetch returns deduplicated candidates in variant order. Per-call failures
// are logged and count as empty; only parent cancellation is an error.
func (f *fetcher) fetch(ctx context.Context, variants []QueryVariant, entity EntityType) ([]Candidate, fetchStats, error) {
	logger := logging.WithContext(ctx, f.logger)
	tiers := groupVariants(variants)
	var stats fetchStats

	seen := make(map[string]struct{})
	var merged []Candidate
	for tier, groups := range tiers {
		if tier > f.policy.MaxTier {
			break
		}
		if len(groups) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		results := make([][]Candidate, len(groups))
		calls := make([]int, len(groups))
		failures := make([]int, len(groups))
		var g errgroup.Group
		g.SetLimit(f.policy.parallelism())
		for i, group := range groups {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				results[i], calls[i], failures[i] = f.runGroup(ctx, logger, group, entity)
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		added := 0
		for i, found := range results {
			stats.Calls += calls[i]
			stats.Failures += failures[i]
			for _, c := range found {
				if c.ID == "" {
					continue
				}
				if _, dup := seen[c.ID]; dup {
					continue
				}
				seen[c.ID] = struct{}{}
				c.Tier = tier
				if c.Entity == "" {
					c.Entity = entity
				}
				merged = append(merged, c)
				added++
			}
		}
		stats.LastTier = tier
		logger.Debug("search tier complete",
			logging.String("entity", string(entity)),
			logging.Int("tier", tier),
			logging.Int("variants", len(groups)),
			logging.Int("new_candidates", added),
			logging.Int("total_candidates", len(merged)),
		)
		if len(merged) >= f.policy.MinCandidates {
			break
		}
	}
	return merged, stats, nil
}

// runGroup tries each scope in order until one returns results.
func (f *fetcher) runGroup(ctx context.Context, logger *slog.Logger, group searchGroup, entity EntityType) ([]Candidate, int, int) {
	calls, failures := 0, 0
	limit := f.policy.pageSize()
	for _, scope := range group.scopes {
		if ctx.Err() != nil {
			return nil, calls, failures
		}
		callCtx := ctx
		cancel := func() {}
		if f.policy.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, f.policy.CallTimeout)
		}
		found, err := f.searcher.Search(callCtx, group.text, entity, scope, limit)
		cancel()
		calls++
		if err != nil {
			failures++
			if ctx.Err() != nil {
				return nil, calls, failures
			}
			hint := "check catalog credentials and network connectivity"
			if IsUnavailable(err) {
				hint = "catalog is rate limiting or degraded; results may be incomplete"
			}
			logging.WarnWithContext(logger, "search call failed",
				"search_call_failed",
				logging.String("query", group.text),
				logging.String("scope", scopeLabel(scope)),
				logging.Int("tier", group.tier),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, hint),
				logging.String(logging.FieldImpact, "variant treated as empty"),
			)
			continue
		}
		if len(found) > limit {
			found = found[:limit]
		}
		if len(found) > 0 {
			return found, calls, failures
		}
	}
	return nil, calls, failures
}

func scopeLabel(scope string) string {
	if strings.TrimSpace(scope) == "" {
		return "unrestricted"
	}
	return scope
}
