package radio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"soundmatch/internal/config"
	"soundmatch/internal/logging"
	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
	"soundmatch/internal/textutil"
)

// Kind selects which artist playlist to look for.
type Kind string

const (
	KindRadio  Kind = "radio"
	KindThisIs Kind = "this-is"
)

// ParseKind maps user input to a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "radio":
		return KindRadio, nil
	case "this-is", "thisis", "this is":
		return KindThisIs, nil
	default:
		return "", services.Wrap(services.ErrValidation, "radio", "parse kind",
			fmt.Sprintf("unknown playlist kind %q (want radio or this-is)", value), nil)
	}
}

// Request identifies the artist whose playlist is wanted. ArtistID is the
// catalog identity member tracks are checked against; without it the match
// is not validated.
type Request struct {
	Artist   string
	ArtistID string
	Kind     Kind
}

// commonNames are artist names too ordinary to trust outside a playlist title.
var commonNames = map[string]struct{}{
	"yes": {}, "no": {}, "go": {}, "up": {}, "low": {}, "war": {}, "pop": {}, "fun": {},
	"life": {}, "love": {}, "art": {}, "air": {}, "jam": {}, "sun": {}, "moon": {},
	"rock": {}, "hit": {}, "hot": {}, "top": {}, "mix": {},
}

// TitleOnly reports whether artist is short or common enough that only the
// playlist title may mention it.
func TitleOnly(artist string) bool {
	n := textutil.Normalize(artist)
	if len([]rune(n)) <= 3 {
		return true
	}
	_, common := commonNames[n]
	return common
}

// IdealTitles returns the canonical playlist names for artist, most
// canonical first.
func IdealTitles(artist string, kind Kind) []string {
	artist = strings.TrimSpace(artist)
	if kind == KindThisIs {
		return []string{"This Is " + artist}
	}
	return []string{artist + " Radio", "Radio " + artist, "Rádio de " + artist}
}

// Service finds artist radio and This Is playlists.
type Service struct {
	engines map[Kind]*resolve.Engine
	cache   services.Cache
	logger  *slog.Logger
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

// WithCache enables read-through caching of Find.
func WithCache(cache services.Cache) Option { return func(o *options) { o.cache = cache } }

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// NewService builds the radio service over catalog.
func NewService(catalog resolve.Catalog, opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	build := func(p resolve.Profile) *resolve.Engine {
		p.Filter = mentionsArtist
		return resolve.NewEngine(catalog, services.Tune(p, o.cfg), resolve.WithLogger(o.logger))
	}
	return &Service{
		engines: map[Kind]*resolve.Engine{
			KindRadio:  build(resolve.RadioProfile()),
			KindThisIs: build(resolve.ThisIsProfile()),
		},
		cache:  o.cache,
		logger: logging.NewComponentLogger(o.logger, "radio"),
	}
}

// mentionsArtist keeps playlists that name the artist (HintTerms[0]) as a
// whole word. Short or common names must appear in the title itself.
func mentionsArtist(c resolve.Candidate, q resolve.Query) bool {
	if len(q.HintTerms) == 0 {
		return true
	}
	artist := q.HintTerms[0]
	if textutil.ContainsPhrase(c.DisplayName, artist) {
		return true
	}
	return !TitleOnly(artist) && textutil.ContainsPhrase(c.Description, artist)
}

// Query builds the engine query for req.
func (s *Service) Query(req Request) resolve.Query {
	artist := strings.TrimSpace(req.Artist)
	titles := IdealTitles(artist, req.Kind)
	return resolve.Query{
		Title:       titles[0],
		AltTitles:   titles[1:],
		HintTerms:   []string{artist},
		ReferenceID: strings.TrimSpace(req.ArtistID),
	}
}

func (s *Service) engine(kind Kind) (*resolve.Engine, error) {
	if kind == "" {
		kind = KindRadio
	}
	engine, ok := s.engines[kind]
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "radio", "select profile", fmt.Sprintf("unknown playlist kind %q", kind), nil)
	}
	return engine, nil
}

// Find resolves the artist playlist, validating members against ArtistID
// when given.
func (s *Service) Find(ctx context.Context, req Request) (services.Outcome, error) {
	if strings.TrimSpace(req.Artist) == "" {
		return services.Outcome{}, services.Wrap(services.ErrValidation, "radio", "find", "artist name required", resolve.ErrEmptyTitle)
	}
	engine, err := s.engine(req.Kind)
	if err != nil {
		return services.Outcome{}, err
	}
	ctx = logging.WithProfile(ctx, engine.Profile().Name)
	outcome, err := services.CachedResolve(ctx, engine, s.cache, s.Query(req), s.logger)
	if err != nil {
		return services.Outcome{}, services.Classify("radio", "find", err)
	}

	result := "rejected"
	if outcome.Resolution.Accepted {
		result = "accepted"
	}
	logging.WithContext(ctx, s.logger).Info("artist playlist lookup finished",
		logging.Args(append(logging.DecisionAttrs("artist_playlist_match", result, outcome.Resolution.Reason.String()),
			logging.String("artist", req.Artist),
			logging.Bool("validated", req.ArtistID != ""),
			logging.Bool("cached", outcome.Cached),
		)...)...,
	)
	return outcome, nil
}

// Candidates ranks plausible playlists for a manual picker. Nothing is
// validated or cached.
func (s *Service) Candidates(ctx context.Context, req Request, limit int) ([]resolve.ScoredCandidate, error) {
	if strings.TrimSpace(req.Artist) == "" {
		return nil, services.Wrap(services.ErrValidation, "radio", "candidates", "artist name required", resolve.ErrEmptyTitle)
	}
	engine, err := s.engine(req.Kind)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithProfile(ctx, engine.Profile().Name)
	ranked, err := engine.Rank(ctx, s.Query(req), limit)
	if err != nil {
		return nil, services.Classify("radio", "candidates", err)
	}
	return ranked, nil
}
