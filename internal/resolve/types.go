package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"soundmatch/internal/textutil"
)

// MediaKind distinguishes one-shot releases from serial ones.
type MediaKind int

const (
	MediaUnspecified MediaKind = iota
	MediaMovie
	MediaSeries
)

func (k MediaKind) String() string {
	switch k {
	case MediaMovie:
		return "movie"
	case MediaSeries:
		return "series"
	default:
		return "unspecified"
	}
}

// ParseMediaKind maps user input to a MediaKind. Unknown values are unspecified.
func ParseMediaKind(value string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "movie", "film":
		return MediaMovie
	case "series", "tv", "show":
		return MediaSeries
	default:
		return MediaUnspecified
	}
}

// EntityType is the catalog record type passed to the search port.
type EntityType string

const (
	EntityAlbum    EntityType = "album"
	EntityPlaylist EntityType = "playlist"
	EntityArtist   EntityType = "artist"
	EntityTrack    EntityType = "track"
)

// Kind reports whether records of this type aggregate member items.
func (e EntityType) Kind() CandidateKind {
	switch e {
	case EntityAlbum, EntityPlaylist:
		return KindContainer
	default:
		return KindItem
	}
}

// CandidateKind separates containers (albums, playlists) from items.
type CandidateKind int

const (
	KindItem CandidateKind = iota
	KindContainer
)

func (k CandidateKind) String() string {
	if k == KindContainer {
		return "container"
	}
	return "item"
}

// Query is the immutable resolution input. Year 0 and an empty ReferenceID
// mean absent.
type Query struct {
	Title       string
	Year        int
	MediaKind   MediaKind
	HintTerms   []string
	ReferenceID string
	// AltTitles are further ideal names, scored and planned like Title.
	AltTitles []string
	// Context holds broader terms (parent genres) used as fallback hints.
	Context []string
}

// CacheKey is the structured, comparable identity of a Query under a profile.
type CacheKey struct {
	Profile   string
	Title     string
	Year      int
	MediaKind MediaKind
	Reference string
	Hints     string
	AltTitles string
	Context   string
}

// Key derives the cache identity of q for the named profile.
func (q Query) Key(profile string) CacheKey {
	return CacheKey{
		Profile:   profile,
		Title:     textutil.Normalize(q.Title),
		Year:      q.Year,
		MediaKind: q.MediaKind,
		Reference: strings.TrimSpace(q.ReferenceID),
		Hints:     joinNormalized(q.HintTerms),
		AltTitles: joinNormalized(q.AltTitles),
		Context:   joinNormalized(q.Context),
	}
}

// String renders the key in a canonical form suitable for storage.
func (k CacheKey) String() string {
	var b strings.Builder
	b.WriteString(k.Profile)
	b.WriteString("|t=")
	b.WriteString(k.Title)
	b.WriteString("|y=")
	b.WriteString(strconv.Itoa(k.Year))
	b.WriteString("|k=")
	b.WriteString(k.MediaKind.String())
	b.WriteString("|r=")
	b.WriteString(k.Reference)
	b.WriteString("|h=")
	b.WriteString(k.Hints)
	b.WriteString("|a=")
	b.WriteString(k.AltTitles)
	b.WriteString("|c=")
	b.WriteString(k.Context)
	return b.String()
}

func joinNormalized(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if n := textutil.Normalize(v); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, ",")
}

// QueryVariant is one generated search string with its tier and scope.
type QueryVariant struct {
	Text  string `json:"text"`
	Tier  int    `json:"tier"`
	Scope string `json:"scope,omitempty"`
}

// TierRelated marks candidates that entered through graph expansion.
const TierRelated = 3

// Candidate is one catalog record returned by a port. Zero numeric fields
// mean unknown.
type Candidate struct {
	ID             string        `json:"id"`
	DisplayName    string        `json:"display_name"`
	Kind           CandidateKind `json:"kind"`
	Entity         EntityType    `json:"entity,omitempty"`
	MemberCount    int           `json:"member_count,omitempty"`
	ReleaseYear    int           `json:"release_year,omitempty"`
	Contributors   []string      `json:"contributors,omitempty"`
	ContributorIDs []string      `json:"contributor_ids,omitempty"`
	ExternalRef    string        `json:"external_ref,omitempty"`
	Subtype        string        `json:"subtype,omitempty"`
	Curator        string        `json:"curator,omitempty"`
	Description    string        `json:"description,omitempty"`
	Tags           []string      `json:"tags,omitempty"`
	Popularity     int           `json:"popularity,omitempty"`
	Tier           int           `json:"tier"`
}

// Evidence grades keyword support for a candidate.
type Evidence int

const (
	EvidenceNone Evidence = iota
	EvidenceWeak
	EvidenceStrong
)

func (e Evidence) String() string {
	switch e {
	case EvidenceStrong:
		return "strong"
	case EvidenceWeak:
		return "weak"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Evidence) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Evidence) UnmarshalText(text []byte) error {
	switch string(text) {
	case "strong":
		*e = EvidenceStrong
	case "weak":
		*e = EvidenceWeak
	case "none", "":
		*e = EvidenceNone
	default:
		return fmt.Errorf("unknown evidence %q", text)
	}
	return nil
}

// Signals records every additive scorer term for one candidate.
type Signals struct {
	Similarity      float64  `json:"similarity"`
	Keyword         float64  `json:"keyword"`
	Negative        float64  `json:"negative"`
	Structure       float64  `json:"structure"`
	Temporal        float64  `json:"temporal"`
	ContributorHint float64  `json:"contributor_hint"`
	Distinctive     float64  `json:"distinctive"`
	Curator         float64  `json:"curator"`
	Popularity      float64  `json:"popularity"`
	Evidence        Evidence `json:"evidence"`
	Exact           bool     `json:"exact"`
}

// Total sums the terms in a fixed order.
func (s Signals) Total() float64 {
	return s.Similarity + s.Keyword + s.Negative + s.Structure + s.Temporal +
		s.ContributorHint + s.Distinctive + s.Curator + s.Popularity
}

// ScoredCandidate pairs a candidate with its score. Scores are comparable
// only among candidates scored for the same Query.
type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
	Signals   Signals   `json:"signals"`
}

// Reason explains a rejected resolution.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoCandidates
	ReasonBelowThreshold
	ReasonFailedValidation
)

func (r Reason) String() string {
	switch r {
	case ReasonNoCandidates:
		return "no_candidates"
	case ReasonBelowThreshold:
		return "below_threshold"
	case ReasonFailedValidation:
		return "failed_validation"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	for _, candidate := range []Reason{ReasonNone, ReasonNoCandidates, ReasonBelowThreshold, ReasonFailedValidation} {
		if candidate.String() == string(text) {
			*r = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown reason %q", text)
}

// ValidationReport describes the member sampling of one container.
type ValidationReport struct {
	CandidateID string  `json:"candidate_id"`
	Sampled     int     `json:"sampled"`
	Hits        int     `json:"hits"`
	HitRatio    float64 `json:"hit_ratio"`
	Passed      bool    `json:"passed"`
}

// Resolution is the terminal output of Resolve.
type Resolution struct {
	Accepted   bool              `json:"accepted"`
	Reason     Reason            `json:"reason"`
	Match      *ScoredCandidate  `json:"match,omitempty"`
	Entity     EntityType        `json:"entity,omitempty"`
	Validation *ValidationReport `json:"validation,omitempty"`
}

// Accepted builds an accepted resolution.
func Accepted(sc ScoredCandidate) Resolution {
	return Resolution{Accepted: true, Match: &sc}
}

// Rejected builds a rejected resolution.
func Rejected(reason Reason) Resolution {
	return Resolution{Reason: reason}
}
