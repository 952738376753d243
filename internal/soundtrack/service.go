package soundtrack

import (
	"context"
	"log/slog"
	"strings"

	"soundmatch/internal/config"
	"soundmatch/internal/logging"
	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
)

// maxComposerHints bounds the contributor hints looked up per title.
const maxComposerHints = 3

// ComposerSource finds the composers credited on a film or series.
type ComposerSource interface {
	Composers(ctx context.Context, title string, year int, series bool, limit int) ([]string, error)
}

// Request describes one soundtrack lookup.
type Request struct {
	Title  string
	Year   int
	Series bool
	// Composers are caller-supplied hints; when empty they are looked up.
	Composers []string
}

// Result is the outcome of Find.
type Result struct {
	services.Outcome
	Composers []string `json:"composers,omitempty"`
}

// Service resolves film and series soundtracks to catalog albums or playlists.
type Service struct {
	engine    *resolve.Engine
	cache     services.Cache
	composers ComposerSource
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	cfg       *config.Config
	cache     services.Cache
	composers ComposerSource
	logger    *slog.Logger
}

// WithConfig applies engine calibration from cfg.
func WithConfig(cfg *config.Config) Option { return func(o *options) { o.cfg = cfg } }

// WithCache enables read-through caching.
func WithCache(cache services.Cache) Option { return func(o *options) { o.cache = cache } }

// WithComposers enables composer hint lookup.
func WithComposers(src ComposerSource) Option { return func(o *options) { o.composers = src } }

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// NewService builds a soundtrack service over catalog.
func NewService(catalog resolve.Catalog, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	profile := services.Tune(resolve.SoundtrackProfile(), o.cfg)
	return &Service{
		engine:    resolve.NewEngine(catalog, profile, resolve.WithLogger(o.logger)),
		cache:     o.cache,
		composers: o.composers,
		logger:    logging.NewComponentLogger(o.logger, "soundtrack"),
	}
}

// Query builds the engine query for req without looking up composers.
func (s *Service) Query(req Request) resolve.Query {
	kind := resolve.MediaMovie
	if req.Series {
		kind = resolve.MediaSeries
	}
	return resolve.Query{
		Title:     strings.TrimSpace(req.Title),
		Year:      req.Year,
		MediaKind: kind,
		HintTerms: cleanHints(req.Composers),
	}
}

// Plan returns the search variants Find would issue before composer lookup.
func (s *Service) Plan(req Request) []resolve.QueryVariant {
	return s.engine.Plan(s.Query(req))
}

// Find resolves the soundtrack for req. Composer lookup failures only cost
// the hints.
func (s *Service) Find(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Title) == "" {
		return Result{}, services.Classify("soundtrack", "find", resolve.ErrEmptyTitle)
	}
	ctx = logging.WithProfile(ctx, s.engine.Profile().Name)
	logger := logging.WithContext(ctx, s.logger)

	q := s.Query(req)
	outcome, err := services.CachedResolveEnriched(ctx, s.engine, s.cache, q, s.withComposers(req.Series), s.logger)
	if err != nil {
		return Result{}, services.Classify("soundtrack", "find", err)
	}
	logger.Info("soundtrack lookup finished",
		logging.Args(append(logging.DecisionAttrs("soundtrack_match", decisionResult(outcome.Resolution), outcome.Resolution.Reason.String()),
			logging.String("title", q.Title),
			logging.Bool("cached", outcome.Cached),
		)...)...,
	)
	return Result{Outcome: outcome, Composers: outcome.Query.HintTerms}, nil
}

// withComposers returns the cache-miss step that fills in composer hints.
// Lookup failures are logged and the query goes out without hints.
func (s *Service) withComposers(series bool) services.Enrich {
	return func(ctx context.Context, q resolve.Query) (resolve.Query, error) {
		if len(q.HintTerms) > 0 || s.composers == nil {
			return q, nil
		}
		logger := logging.WithContext(ctx, s.logger)
		names, err := s.composers.Composers(ctx, q.Title, q.Year, series, maxComposerHints)
		if err != nil {
			if ctx.Err() != nil {
				return q, ctx.Err()
			}
			logging.WarnWithContext(logger, "composer lookup failed", "composer_lookup_failed",
				logging.String("title", q.Title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check tmdb.api_key and network access"),
				logging.String(logging.FieldImpact, "soundtrack searched without composer hints"),
			)
			return q, nil
		}
		q.HintTerms = cleanHints(names)
		logger.Debug("composer hints resolved", logging.Strings("composers", q.HintTerms))
		return q, nil
	}
}

func decisionResult(res resolve.Resolution) string {
	if res.Accepted {
		return "accepted"
	}
	return "rejected"
}

func cleanHints(values []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
