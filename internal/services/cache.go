package services

import (
	"context"
	"fmt"
	"log/slog"

	"soundmatch/internal/logging"
	"soundmatch/internal/resolve"
)

// Cache is the subset of the resolution cache the call sites use.
type Cache interface {
	GetResolution(ctx context.Context, key resolve.CacheKey) (resolve.Resolution, bool, error)
	PutResolution(ctx context.Context, key resolve.CacheKey, res resolve.Resolution) error
	GetRanking(ctx context.Context, key resolve.CacheKey) ([]resolve.ScoredCandidate, bool, error)
	PutRanking(ctx context.Context, key resolve.CacheKey, ranked []resolve.ScoredCandidate) error
}

// Outcome is a resolution plus where it came from.
type Outcome struct {
	Resolution resolve.Resolution `json:"resolution"`
	Query      resolve.Query      `json:"-"`
	Cached     bool               `json:"cached"`
}

// Enrich completes a query before the engine sees it, for example with
// looked-up hints.
type Enrich func(context.Context, resolve.Query) (resolve.Query, error)

// CachedResolve reads q through cache before asking the engine. Cache
// failures are logged and never fail the lookup. A nil cache resolves directly.
func CachedResolve(ctx context.Context, engine *resolve.Engine, cache Cache, q resolve.Query, logger *slog.Logger) (Outcome, error) {
	return CachedResolveEnriched(ctx, engine, cache, q, nil, logger)
}

// CachedResolveEnriched is CachedResolve with the key taken from q as given.
// enrich runs only on a miss, so a hit costs no side lookups.
func CachedResolveEnriched(ctx context.Context, engine *resolve.Engine, cache Cache, q resolve.Query, enrich Enrich, logger *slog.Logger) (Outcome, error) {
	logger = logging.WithContext(ctx, logger)
	key := q.Key(engine.Profile().Name)
	if cache != nil {
		res, found, err := cache.GetResolution(ctx, key)
		switch {
		case err != nil:
			warnCache(logger, "cache_read_failed", key, err)
		case found:
			logger.Debug("resolution served from cache", logging.String("key", key.String()))
			return Outcome{Resolution: res, Query: q, Cached: true}, nil
		}
	}

	if enrich != nil {
		enriched, err := enrich(ctx, q)
		if err != nil {
			return Outcome{}, err
		}
		q = enriched
	}
	res, err := engine.Resolve(ctx, q)
	if err != nil {
		return Outcome{}, err
	}
	if cache != nil {
		if err := cache.PutResolution(ctx, key, res); err != nil {
			warnCache(logger, "cache_write_failed", key, err)
		}
	}
	return Outcome{Resolution: res, Query: q}, nil
}

// CachedRank is CachedResolve for rankings. The limit is part of the key.
func CachedRank(ctx context.Context, engine *resolve.Engine, cache Cache, q resolve.Query, limit int, logger *slog.Logger) ([]resolve.ScoredCandidate, bool, error) {
	logger = logging.WithContext(ctx, logger)
	key := q.Key(fmt.Sprintf("%s/%d", engine.Profile().Name, limit))
	if cache != nil {
		ranked, found, err := cache.GetRanking(ctx, key)
		switch {
		case err != nil:
			warnCache(logger, "cache_read_failed", key, err)
		case found:
			logger.Debug("ranking served from cache", logging.String("key", key.String()))
			return ranked, true, nil
		}
	}

	ranked, err := engine.Rank(ctx, q, limit)
	if err != nil {
		return nil, false, err
	}
	if cache != nil {
		if err := cache.PutRanking(ctx, key, ranked); err != nil {
			warnCache(logger, "cache_write_failed", key, err)
		}
	}
	return ranked, false, nil
}

func warnCache(logger *slog.Logger, event string, key resolve.CacheKey, err error) {
	logging.WarnWithContext(logger, "resolution cache unavailable", event,
		logging.String("key", key.String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check cache.path permissions or run 'soundmatch cache clear'"),
		logging.String(logging.FieldImpact, "lookup went to the catalog"),
	)
}
