package resolve

import (
	"context"
	"log/slog"
	"strings"

	"soundmatch/internal/logging"
)

// Engine resolves queries against a catalog under one profile. It keeps no
// per-call state and is safe for concurrent use.
type Engine struct {
	catalog   Catalog
	profile   Profile
	scorer    *Scorer
	fetcher   *fetcher
	validator validator
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an engine bound to catalog and profile.
func NewEngine(catalog Catalog, profile Profile, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		profile: profile,
		scorer:  NewScorer(profile),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "resolve").With(logging.String(logging.FieldProfile, profile.Name))
	e.fetcher = &fetcher{searcher: catalog, policy: profile.Fetch, logger: e.logger}
	e.validator = validator{
		lister:      catalog,
		policy:      profile.Validate,
		callTimeout: profile.Fetch.CallTimeout,
		logger:      e.logger,
	}
	return e
}

// Profile returns the engine's profile.
func (e *Engine) Profile() Profile { return e.profile }

// Plan returns the variants Resolve and Rank would search for q.
func (e *Engine) Plan(q Query) []QueryVariant {
	return Plan(q, e.profile.Plan, e.profile.Fetch.scopes())
}

// Resolve picks the single best catalog record for q or declines with a
// reason. Catalog failures are absorbed; the error is non-nil only for a
// blank title or a cancelled context.
func (e *Engine) Resolve(ctx context.Context, q Query) (Resolution, error) {
	if strings.TrimSpace(q.Title) == "" {
		return Resolution{}, ErrEmptyTitle
	}
	logger := logging.WithContext(ctx, e.logger)
	variants := e.Plan(q)

	outcome := Rejected(ReasonNoCandidates)
	for _, entity := range e.profile.Entities {
		res, err := e.resolveEntity(ctx, logger, q, variants, entity)
		if err != nil {
			return Resolution{}, err
		}
		res.Entity = entity
		if res.Accepted {
			logger.Info("resolution accepted",
				logging.Args(append(logging.DecisionAttrs("candidate_selection", "accepted", "cleared threshold"),
					logging.String("title", q.Title),
					logging.String("entity", string(entity)),
					logging.String("candidate_id", res.Match.Candidate.ID),
					logging.String("candidate_name", res.Match.Candidate.DisplayName),
					logging.Float64("score", res.Match.Score),
				)...)...,
			)
			return res, nil
		}
		outcome = strongerRejection(outcome, res)
		logger.Debug("entity type rejected",
			logging.String("entity", string(entity)),
			logging.String("reason", res.Reason.String()),
		)
	}
	logger.Info("resolution rejected",
		logging.Args(append(logging.DecisionAttrs("candidate_selection", "rejected", outcome.Reason.String()),
			logging.String("title", q.Title),
		)...)...,
	)
	return outcome, nil
}

func (e *Engine) resolveEntity(ctx context.Context, logger *slog.Logger, q Query, variants []QueryVariant, entity EntityType) (Resolution, error) {
	candidates, stats, err := e.fetcher.fetch(ctx, variants, entity)
	if err != nil {
		return Resolution{}, err
	}
	candidates = e.filter(candidates, q)
	logger.Debug("candidates fetched",
		logging.String("entity", string(entity)),
		logging.Int("candidates", len(candidates)),
		logging.Int("calls", stats.Calls),
		logging.Int("failed_calls", stats.Failures),
		logging.Int("last_tier", stats.LastTier),
	)
	if len(candidates) == 0 {
		return Rejected(ReasonNoCandidates), nil
	}

	scored := e.scoreSorted(logger, candidates, q)
	if strings.TrimSpace(q.ReferenceID) == "" {
		return e.selectUnvalidated(scored, q.MediaKind), nil
	}

	queue := e.validationOrder(scored, q.MediaKind)
	if len(queue) == 0 {
		return Rejected(ReasonBelowThreshold), nil
	}
	var last *ValidationReport
	for _, sc := range queue {
		report, err := e.validator.validate(ctx, sc.Candidate.ID, q.ReferenceID)
		if err != nil {
			return Resolution{}, err
		}
		if report.Passed {
			res := Accepted(sc)
			res.Validation = &report
			return res, nil
		}
		last = &report
	}
	res := Rejected(ReasonFailedValidation)
	res.Validation = last
	return res, nil
}

// Rank returns candidates for q above the profile's rank floor, best first,
// at most limit of them (limit <= 0 means no limit). When too few survive and
// the profile enables expansion, the top seeds' related entities are merged
// in and everything is rescored.
func (e *Engine) Rank(ctx context.Context, q Query, limit int) ([]ScoredCandidate, error) {
	if strings.TrimSpace(q.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if len(e.profile.Entities) == 0 {
		return nil, nil
	}
	logger := logging.WithContext(ctx, e.logger)
	entity := e.profile.Entities[0]

	candidates, _, err := e.fetcher.fetch(ctx, e.Plan(q), entity)
	if err != nil {
		return nil, err
	}
	candidates = e.filter(candidates, q)
	ranked := e.aboveFloor(e.scoreSorted(logger, candidates, q))

	if e.profile.Expand.Enabled && e.profile.Expand.Seeds > 0 && len(ranked) > 0 && (limit <= 0 || len(ranked) < limit) {
		seeds := ranked[:min(e.profile.Expand.Seeds, len(ranked))]
		related, err := e.expand(ctx, logger, seeds)
		if err != nil {
			return nil, err
		}
		if len(related) > 0 {
			merged := mergeCandidates(candidates, e.filter(related, q))
			ranked = e.aboveFloor(e.scoreSorted(logger, merged, q))
		}
	}

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	logger.Info("ranking complete",
		logging.String("title", q.Title),
		logging.Int("results", len(ranked)),
		logging.Int("limit", limit),
	)
	return ranked, nil
}

func (e *Engine) filter(candidates []Candidate, q Query) []Candidate {
	if e.profile.Filter == nil {
		return candidates
	}
	kept := candidates[:0:0]
	for _, c := range candidates {
		if e.profile.Filter(c, q) {
			kept = append(kept, c)
		}
	}
	return kept
}

func (e *Engine) scoreSorted(logger *slog.Logger, candidates []Candidate, q Query) []ScoredCandidate {
	scored := e.scorer.ScoreAll(candidates, q)
	SortScored(scored)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		for _, sc := range scored {
			logger.Debug("candidate scored",
				logging.String("candidate_id", sc.Candidate.ID),
				logging.String("candidate_name", sc.Candidate.DisplayName),
				logging.Int("tier", sc.Candidate.Tier),
				logging.Float64("score", sc.Score),
				logging.String("evidence", sc.Signals.Evidence.String()),
				logging.Float64("similarity", sc.Signals.Similarity),
				logging.Float64("negative", sc.Signals.Negative),
				logging.Float64("structure", sc.Signals.Structure),
				logging.Float64("temporal", sc.Signals.Temporal),
				logging.Float64("distinctive", sc.Signals.Distinctive),
			)
		}
	}
	return scored
}

func (e *Engine) aboveFloor(scored []ScoredCandidate) []ScoredCandidate {
	out := scored[:0:0]
	for _, sc := range scored {
		if sc.Score >= e.profile.RankFloor {
			out = append(out, sc)
		}
	}
	return out
}

// mergeCandidates appends extra candidates whose ids are not already present.
func mergeCandidates(base, extra []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]Candidate, 0, len(base)+len(extra))
	for _, c := range base {
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, c := range extra {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
