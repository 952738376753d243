package genre

import (
	"context"
	"log/slog"
	"strings"

	"soundmatch/internal/config"
	"soundmatch/internal/logging"
	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
)

const (
	// DefaultLimit is the number of artists returned when Request.Limit is unset.
	DefaultLimit = 20
	maxLimit     = 50
	maxAncestors = 2
)

var synonyms = map[string]string{
	"prog rock":        "progressive rock",
	"prog-rock":        "progressive rock",
	"progressive-rock": "progressive rock",
	"rock progressivo": "progressive rock",
	"fusion jazz":      "jazz fusion",
	"fusion-jazz":      "jazz fusion",
	"garage-rock":      "garage rock",
	"hard-rock":        "hard rock",
	"bossa-nova":       "bossa nova",
	"r&b":              "rhythm and blues",
	"rock & roll":      "rock and roll",
	"rock n roll":      "rock and roll",
	"rock 'n' roll":    "rock and roll",
	"rock ’n’ roll":    "rock and roll",
	"synth pop":        "synth-pop",
	"synthpop":         "synth-pop",
	"dance pop":        "dance-pop",
	"doo wop":          "doo-wop",
	"post punk":        "post-punk",
	"hip-hop":          "hip hop",
	"electronica":      "electronic",
	"eletrónica":       "electronic",
	"classico":         "classical",
	"latino":           "latin",
	"latina":           "latin",
}

// Canonical lower-cases term and maps known spelling variants to one name.
func Canonical(term string) string {
	t := strings.Join(strings.Fields(strings.ToLower(term)), " ")
	if canon, ok := synonyms[t]; ok {
		return canon
	}
	return t
}

// Request asks for the top artists of a genre. Ancestors are broader genres,
// nearest first.
type Request struct {
	Genre     string
	Ancestors []string
	Limit     int
}

// Result is the ranked artist list. Playlists is filled only when no artist
// made the ranking.
type Result struct {
	Genre     string                    `json:"genre"`
	Context   []string                  `json:"context,omitempty"`
	Artists   []resolve.ScoredCandidate `json:"artists"`
	Playlists []resolve.ScoredCandidate `json:"playlists,omitempty"`
	Cached    bool                      `json:"cached"`
}

// Service discovers artists for a genre.
type Service struct {
	engine    *resolve.Engine
	playlists *resolve.Engine
	cache     services.Cache
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	cfg    *config.Config
	cache  services.Cache
	logger *slog.Logger
}

// WithConfig applies engine calibration from cfg.
func WithConfig(cfg *config.Config) Option { return func(o *options) { o.cfg = cfg } }

// WithCache enables read-through caching of rankings.
func WithCache(cache services.Cache) Option { return func(o *options) { o.cache = cache } }

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// NewService builds the genre service over catalog.
func NewService(catalog resolve.Catalog, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	build := func(p resolve.Profile) *resolve.Engine {
		return resolve.NewEngine(catalog, services.Tune(p, o.cfg), resolve.WithLogger(o.logger))
	}
	return &Service{
		engine:    build(resolve.GenreArtistsProfile()),
		playlists: build(resolve.GenrePlaylistsProfile()),
		cache:     o.cache,
		logger:    logging.NewComponentLogger(o.logger, "genre"),
	}
}

// Query builds the engine query: the canonical leaf genre with up to two
// distinct ancestors as context.
func (s *Service) Query(req Request) resolve.Query {
	leaf := Canonical(req.Genre)
	var ancestors []string
	seen := map[string]struct{}{leaf: {}}
	for _, ancestor := range req.Ancestors {
		a := Canonical(ancestor)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		ancestors = append(ancestors, a)
		if len(ancestors) == maxAncestors {
			break
		}
	}
	return resolve.Query{Title: leaf, Context: ancestors}
}

// TopArtists ranks artists tagged with the requested genre, widening
// through related artists when the direct search is thin. When no artist
// survives it ranks playlists named for the genre instead.
func (s *Service) TopArtists(ctx context.Context, req Request) (Result, error) {
	q := s.Query(req)
	if q.Title == "" {
		return Result{}, services.Wrap(services.ErrValidation, "genre", "top artists", "genre required", resolve.ErrEmptyTitle)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, maxLimit)

	ctx = logging.WithProfile(ctx, s.engine.Profile().Name)
	ranked, cached, err := services.CachedRank(ctx, s.engine, s.cache, q, limit, s.logger)
	if err != nil {
		return Result{}, services.Classify("genre", "top artists", err)
	}
	logging.WithContext(ctx, s.logger).Info("genre ranking finished",
		logging.String("genre", q.Title),
		logging.Strings("context", q.Context),
		logging.Int("artists", len(ranked)),
		logging.Bool("cached", cached),
	)
	if ranked == nil {
		ranked = []resolve.ScoredCandidate{}
	}
	res := Result{Genre: q.Title, Context: q.Context, Artists: ranked, Cached: cached}
	if len(ranked) > 0 {
		return res, nil
	}

	pctx := logging.WithProfile(ctx, s.playlists.Profile().Name)
	playlists, pcached, err := services.CachedRank(pctx, s.playlists, s.cache, q, limit, s.logger)
	if err != nil {
		return Result{}, services.Classify("genre", "top artists", err)
	}
	logging.WithContext(pctx, s.logger).Info("genre playlist fallback finished",
		logging.String("genre", q.Title),
		logging.Int("playlists", len(playlists)),
		logging.Bool("cached", pcached),
	)
	res.Playlists = playlists
	res.Cached = cached && pcached
	return res, nil
}
