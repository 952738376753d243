package resolve

import "time"

// PlanSpec drives query generation for one call site.
type PlanSpec struct {
	// Field qualifies tier 0 titles (album:"..."); empty quotes the bare title.
	Field string
	// HintField qualifies hint terms; empty appends them as quoted phrases.
	HintField string
	MaxHints  int
	// DomainTerms are the tier 1 keyword OR-group per media kind. A kind
	// without terms falls back to MediaUnspecified; no terms skips tier 1.
	DomainTerms map[MediaKind][]string
	// YearWindow widens the tier 1 year range for non-series queries.
	// Negative disables the year clause.
	YearWindow   int
	ExcludeTerms []string
}

func (p PlanSpec) domainTerms(kind MediaKind) []string {
	if terms := p.DomainTerms[kind]; len(terms) > 0 {
		return terms
	}
	return p.DomainTerms[MediaUnspecified]
}

// Keywords are the evidence phrase lists. Generic terms are penalized like
// negatives unless a hint term also appears in the candidate text.
type Keywords struct {
	Strong   []string
	Weak     []string
	Negative []string
	Generic  []string
}

// Weights are the additive scorer terms. Penalties are positive magnitudes.
type Weights struct {
	Similarity                   float64
	StrongEvidence               float64
	WeakEvidence                 float64
	NoEvidencePenalty            float64
	NegativePenalty              float64
	RealCollection               float64
	RealCollectionFloor          int
	TinyCollectionPenalty        float64
	TinyCollectionCeiling        int
	Compilation                  float64
	YearPenaltyPerYear           float64
	YearPenaltyCap               float64
	ContributorHint              float64
	DistinctiveAllMissingPenalty float64
	DistinctivePartialPenalty    float64
	KnownCurator                 float64
	Popularity                   float64
}

// DefaultWeights returns the baseline calibration.
func DefaultWeights() Weights {
	return Weights{
		Similarity:                   100,
		StrongEvidence:               30,
		WeakEvidence:                 12,
		NoEvidencePenalty:            25,
		NegativePenalty:              40,
		RealCollection:               10,
		RealCollectionFloor:          8,
		TinyCollectionPenalty:        35,
		TinyCollectionCeiling:        2,
		Compilation:                  3,
		YearPenaltyPerYear:           6,
		YearPenaltyCap:               30,
		ContributorHint:              15,
		DistinctiveAllMissingPenalty: 35,
		DistinctivePartialPenalty:    10,
		KnownCurator:                 5,
	}
}

// AcceptPolicy sets the acceptance threshold.
type AcceptPolicy struct {
	BaseScore        float64
	NoEvidenceMargin float64
	SeriesRelief     float64
}

// DefaultAccept returns the baseline thresholds.
func DefaultAccept() AcceptPolicy {
	return AcceptPolicy{BaseScore: 70, NoEvidenceMargin: 20, SeriesRelief: 10}
}

// Threshold is the minimum score for a candidate with the given evidence
// under the given media kind. Missing evidence raises the bar; series lower it.
func (a AcceptPolicy) Threshold(evidence Evidence, kind MediaKind) float64 {
	threshold := a.BaseScore
	if evidence == EvidenceNone {
		threshold += a.NoEvidenceMargin
	}
	if kind == MediaSeries {
		threshold -= a.SeriesRelief
	}
	return threshold
}

// ValidatePolicy bounds member sampling.
type ValidatePolicy struct {
	SampleCap   int
	MinHitRatio float64
	MinHits     int
	MaxAttempts int
}

// DefaultValidate returns the baseline sampling rule.
func DefaultValidate() ValidatePolicy {
	return ValidatePolicy{SampleCap: 80, MinHitRatio: 0.40, MinHits: 10, MaxAttempts: 5}
}

// Passes applies the OR-rule: ratio or absolute hits. Nothing sampled fails.
func (v ValidatePolicy) Passes(hits, sampled int) bool {
	if sampled <= 0 {
		return false
	}
	return float64(hits)/float64(sampled) >= v.MinHitRatio || hits >= v.MinHits
}

// FetchPolicy bounds the candidate fetcher.
type FetchPolicy struct {
	PageSize      int
	Parallelism   int
	CallTimeout   time.Duration
	MinCandidates int
	MaxTier       int
	// Scopes are tried in order per variant; "" is unrestricted.
	Scopes []string
}

// MaxPageSize is the largest page any search call requests.
const MaxPageSize = 25

// DefaultFetch returns the baseline fetch policy.
func DefaultFetch() FetchPolicy {
	return FetchPolicy{
		PageSize:      20,
		Parallelism:   4,
		CallTimeout:   8 * time.Second,
		MinCandidates: 8,
		MaxTier:       2,
		Scopes:        []string{""},
	}
}

func (f FetchPolicy) pageSize() int {
	return min(max(f.PageSize, 1), MaxPageSize)
}

func (f FetchPolicy) parallelism() int {
	return max(f.Parallelism, 1)
}

func (f FetchPolicy) scopes() []string {
	if len(f.Scopes) == 0 {
		return []string{""}
	}
	return f.Scopes
}

// ExpandPolicy controls one-hop related expansion in Rank.
type ExpandPolicy struct {
	Enabled bool
	Seeds   int
}

// EvidenceFields selects which candidate text counts as keyword evidence.
type EvidenceFields uint8

const (
	EvidenceName EvidenceFields = 1 << iota
	EvidenceDescription
	EvidenceTags
)

// Profile is the complete parameterization of the engine for one call site.
type Profile struct {
	Name     string
	Entities []EntityType
	Plan     PlanSpec
	Keywords Keywords
	Weights  Weights
	Accept   AcceptPolicy
	Validate ValidatePolicy
	Fetch    FetchPolicy
	Expand   ExpandPolicy

	// PreferExact puts title-equal candidates ahead of everything else.
	PreferExact   bool
	KnownCurators []string
	// MatchTags scores similarity against candidate tags instead of the name.
	MatchTags bool
	// TitleIsEvidence counts the ideal titles as strong phrases and the
	// query context as weak ones.
	TitleIsEvidence bool
	Evidence        EvidenceFields
	// StrongEvidence limits where strong phrases count; zero means Evidence.
	StrongEvidence EvidenceFields
	// Filter drops candidates before scoring; nil keeps everything.
	Filter    func(Candidate, Query) bool
	RankFloor float64
}

func baseProfile(name string) Profile {
	return Profile{
		Name:     name,
		Weights:  DefaultWeights(),
		Accept:   DefaultAccept(),
		Validate: DefaultValidate(),
		Fetch:    DefaultFetch(),
		Evidence: EvidenceName,
	}
}

// SoundtrackProfile resolves film and series soundtracks: albums first,
// playlists as the complementary kind.
func SoundtrackProfile() Profile {
	p := baseProfile("soundtrack")
	p.Entities = []EntityType{EntityAlbum, EntityPlaylist}
	p.Plan = PlanSpec{
		Field:     "album",
		HintField: "artist",
		MaxHints:  3,
		DomainTerms: map[MediaKind][]string{
			MediaUnspecified: {"soundtrack", "original score", "motion picture", "ost", "score"},
			MediaSeries:      {"soundtrack", "original series", "television soundtrack", "music from"},
		},
		YearWindow: 1,
	}
	p.Keywords = Keywords{
		Strong: []string{
			"original motion picture soundtrack",
			"original soundtrack",
			"motion picture score",
			"original score",
			"music from the motion picture",
			"original series soundtrack",
			"music from the series",
			"music from the netflix series",
			"trilha sonora original",
			"bande originale",
			"banda sonora original",
		},
		Weak: []string{"soundtrack", "score", "ost", "music from", "theme", "themes", "trilha sonora"},
		Negative: []string{
			"karaoke", "tribute", "remaster", "remastered", "live at", "cover", "covers",
			"lullaby", "lullabies", "piano versions", "8 bit", "made famous", "inspired by",
		},
	}
	p.Evidence = EvidenceName | EvidenceDescription
	p.StrongEvidence = EvidenceName
	return p
}

// radioNegatives keeps mixes and mood playlists out of artist radio matches.
var radioNegatives = []string{"mix", "remix", "megamix", "dj mix", "mixtape", "mashup", "medley", "nonstop"}

var genericPlaylistTerms = []string{
	"top 40", "top 50", "top 100", "hits", "best of", "viral", "party",
	"dance hits", "summer", "workout", "chill", "throwback", "oldies",
}

func playlistProfile(name string, strong []string) Profile {
	p := baseProfile(name)
	p.Entities = []EntityType{EntityPlaylist}
	p.Plan = PlanSpec{MaxHints: 0, YearWindow: -1}
	p.Keywords = Keywords{
		Strong:   strong,
		Negative: radioNegatives,
		Generic:  genericPlaylistTerms,
	}
	p.PreferExact = true
	p.KnownCurators = []string{"spotify"}
	p.Evidence = EvidenceName
	return p
}

// RadioProfile resolves an artist's radio playlist. Callers put the naming
// forms ("X Radio", "Radio X") in Query.AltTitles.
func RadioProfile() Profile {
	return playlistProfile("radio", []string{"radio", "radio de"})
}

// ThisIsProfile resolves an artist's "This Is" playlist.
func ThisIsProfile() Profile {
	return playlistProfile("this-is", []string{"this is"})
}

// GenreArtistsProfile ranks artists tagged with a genre.
func GenreArtistsProfile() Profile {
	p := baseProfile("genre-artists")
	p.Entities = []EntityType{EntityArtist}
	p.Plan = PlanSpec{Field: "genre", HintField: "genre", MaxHints: 2, YearWindow: -1}
	p.Keywords = Keywords{
		Negative: []string{"hindustani", "carnatic", "raga", "raag", "sitar", "gharana"},
	}
	p.Weights.Popularity = 0.1
	p.Weights.NoEvidencePenalty = 0
	p.MatchTags = true
	p.TitleIsEvidence = true
	p.Evidence = EvidenceTags
	p.Expand = ExpandPolicy{Enabled: true, Seeds: 3}
	p.RankFloor = 60
	return p
}

// GenrePlaylistsProfile ranks playlists named for a genre. Genre search falls
// back to it when no artist clears the artist ranking.
func GenrePlaylistsProfile() Profile {
	p := baseProfile("genre-playlists")
	p.Entities = []EntityType{EntityPlaylist}
	p.Plan = PlanSpec{
		MaxHints:    2,
		DomainTerms: map[MediaKind][]string{MediaUnspecified: {"mix"}},
		YearWindow:  -1,
	}
	p.KnownCurators = []string{"spotify"}
	p.TitleIsEvidence = true
	p.Evidence = EvidenceName | EvidenceDescription
	p.StrongEvidence = EvidenceName
	p.RankFloor = 60
	return p
}
