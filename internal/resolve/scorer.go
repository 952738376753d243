package resolve

import (
	"math"
	"strings"

	"soundmatch/internal/textutil"
)

// Scorer computes additive scores. It holds only precomputed profile data and
// is safe for concurrent use.
type Scorer struct {
	weights   Weights
	strong    []string
	weak      []string
	negative  []string
	generic   []string
	curators  map[string]struct{}
	matchTags bool
	titleEvid bool
	fields    EvidenceFields
	strongIn  EvidenceFields
}

// NewScorer prepares a scorer for the profile's keyword tables and weights.
func NewScorer(p Profile) *Scorer {
	s := &Scorer{
		weights:   p.Weights,
		strong:    normalizeAll(p.Keywords.Strong),
		weak:      normalizeAll(p.Keywords.Weak),
		negative:  normalizeAll(p.Keywords.Negative),
		generic:   normalizeAll(p.Keywords.Generic),
		curators:  make(map[string]struct{}, len(p.KnownCurators)),
		matchTags: p.MatchTags,
		titleEvid: p.TitleIsEvidence,
		fields:    p.Evidence,
		strongIn:  p.StrongEvidence,
	}
	if s.fields == 0 {
		s.fields = EvidenceName
	}
	if s.strongIn == 0 {
		s.strongIn = s.fields
	}
	for _, c := range p.KnownCurators {
		if n := textutil.Normalize(c); n != "" {
			s.curators[n] = struct{}{}
		}
	}
	return s
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := textutil.Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// queryFacts is the per-query data shared by every candidate score.
type queryFacts struct {
	ideals      []string
	idealSet    map[string]struct{}
	hints       []string
	distinctive []string
	strong      []string
	weak        []string
	year        int
	kind        MediaKind
}

func (s *Scorer) prepare(q Query) queryFacts {
	f := queryFacts{
		idealSet:    map[string]struct{}{},
		hints:       normalizeAll(q.HintTerms),
		distinctive: textutil.DistinctiveTokens(q.Title),
		strong:      s.strong,
		weak:        s.weak,
		year:        q.Year,
		kind:        q.MediaKind,
	}
	for _, t := range append([]string{q.Title}, q.AltTitles...) {
		if strings.TrimSpace(t) == "" {
			continue
		}
		f.ideals = append(f.ideals, t)
		f.idealSet[textutil.Normalize(t)] = struct{}{}
	}
	if s.titleEvid {
		f.strong = append(append([]string{}, s.strong...), normalizeAll(f.ideals)...)
		f.weak = append(append([]string{}, s.weak...), normalizeAll(q.Context)...)
	}
	return f
}

// Score scores one candidate against q.
func (s *Scorer) Score(c Candidate, q Query) ScoredCandidate {
	return s.score(c, s.prepare(q))
}

// ScoreAll scores candidates in input order.
func (s *Scorer) ScoreAll(candidates []Candidate, q Query) []ScoredCandidate {
	facts := s.prepare(q)
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, s.score(c, facts))
	}
	return out
}

func (s *Scorer) score(c Candidate, f queryFacts) ScoredCandidate {
	w := s.weights
	var sig Signals

	name := textutil.Normalize(c.DisplayName)
	_, sig.Exact = f.idealSet[name]

	sig.Similarity = w.Similarity * s.similarity(c, f.ideals)

	text := evidenceText(c, name, s.fields)
	strongText := text
	if s.strongIn != s.fields {
		strongText = evidenceText(c, name, s.strongIn)
	}
	switch {
	case len(f.strong) == 0 && len(f.weak) == 0:
		// No keyword table: evidence is neither rewarded nor held against.
		sig.Evidence = EvidenceWeak
	case containsAny(strongText, f.strong):
		sig.Evidence = EvidenceStrong
		sig.Keyword = w.StrongEvidence
	case containsAny(text, f.weak):
		sig.Evidence = EvidenceWeak
		sig.Keyword = w.WeakEvidence
	default:
		sig.Evidence = EvidenceNone
		sig.Keyword = -w.NoEvidencePenalty
	}

	if containsAny(text, s.negative) || (containsAny(text, s.generic) && !containsAny(text, f.hints)) {
		sig.Negative = -w.NegativePenalty
	}

	if c.Kind == KindContainer && c.MemberCount > 0 {
		switch {
		case c.MemberCount >= w.RealCollectionFloor:
			sig.Structure += w.RealCollection
		case c.MemberCount <= w.TinyCollectionCeiling:
			sig.Structure -= w.TinyCollectionPenalty
		}
		if strings.EqualFold(c.Subtype, "compilation") {
			sig.Structure += w.Compilation
		}
	}

	if f.kind != MediaSeries && f.year > 0 && c.ReleaseYear > 0 {
		diff := math.Abs(float64(c.ReleaseYear - f.year))
		sig.Temporal = -math.Min(w.YearPenaltyPerYear*diff, w.YearPenaltyCap)
	}

	if len(f.hints) > 0 && hintMatches(c.Contributors, f.hints) {
		sig.ContributorHint = w.ContributorHint
	}

	if !s.matchTags && len(f.distinctive) > 0 {
		nameTokens := make(map[string]struct{})
		for _, t := range strings.Fields(name) {
			nameTokens[t] = struct{}{}
		}
		missing := 0
		for _, t := range f.distinctive {
			if _, ok := nameTokens[t]; !ok {
				missing++
			}
		}
		switch {
		case missing == len(f.distinctive):
			sig.Distinctive = -w.DistinctiveAllMissingPenalty
		case missing > 0:
			sig.Distinctive = -w.DistinctivePartialPenalty * float64(missing) / float64(len(f.distinctive))
		}
	}

	if c.Curator != "" {
		if _, ok := s.curators[textutil.Normalize(c.Curator)]; ok {
			sig.Curator = w.KnownCurator
		}
	}

	if w.Popularity != 0 && c.Popularity > 0 {
		sig.Popularity = w.Popularity * float64(c.Popularity)
	}

	return ScoredCandidate{Candidate: c, Score: sig.Total(), Signals: sig}
}

func (s *Scorer) similarity(c Candidate, ideals []string) float64 {
	best := 0.0
	if s.matchTags {
		for _, tag := range c.Tags {
			for _, ideal := range ideals {
				best = max(best, textutil.Similarity(tag, ideal))
			}
		}
		return best
	}
	for _, ideal := range ideals {
		best = max(best, textutil.Similarity(c.DisplayName, ideal))
	}
	return best
}

func evidenceText(c Candidate, name string, fields EvidenceFields) string {
	parts := make([]string, 0, 2+len(c.Tags))
	if fields&EvidenceName != 0 {
		parts = append(parts, name)
	}
	if fields&EvidenceDescription != 0 && c.Description != "" {
		parts = append(parts, textutil.Normalize(c.Description))
	}
	if fields&EvidenceTags != 0 {
		for _, tag := range c.Tags {
			parts = append(parts, textutil.Normalize(tag))
		}
	}
	// A separator that normalization never produces keeps phrases from
	// matching across field boundaries.
	return strings.Join(parts, " | ")
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if textutil.ContainsNormalized(text, p) {
			return true
		}
	}
	return false
}

func hintMatches(contributors, hints []string) bool {
	for _, contributor := range contributors {
		n := textutil.Normalize(contributor)
		if n == "" {
			continue
		}
		for _, h := range hints {
			if n == h || textutil.ContainsNormalized(n, h) {
				return true
			}
		}
	}
	return false
}
