package resolve

import (
	"sort"

	"soundmatch/internal/textutil"
)

// SortScored orders candidates by score descending, then normalized display
// name, then id, so equal inputs always produce the same order.
func SortScored(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		an, bn := textutil.Normalize(a.Candidate.DisplayName), textutil.Normalize(b.Candidate.DisplayName)
		if an != bn {
			return an < bn
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

// preferenceOrder returns sorted candidates rearranged for selection: the
// exact-title pool first (when enabled, known curators leading), then strong
// evidence, then the rest. Relative score order is kept inside each group.
func (e *Engine) preferenceOrder(sorted []ScoredCandidate) []ScoredCandidate {
	var exact, curated, strong, rest []ScoredCandidate
	for _, sc := range sorted {
		switch {
		case e.profile.PreferExact && sc.Signals.Exact && sc.Signals.Curator > 0:
			curated = append(curated, sc)
		case e.profile.PreferExact && sc.Signals.Exact:
			exact = append(exact, sc)
		case sc.Signals.Evidence == EvidenceStrong:
			strong = append(strong, sc)
		default:
			rest = append(rest, sc)
		}
	}
	out := make([]ScoredCandidate, 0, len(sorted))
	out = append(out, curated...)
	out = append(out, exact...)
	out = append(out, strong...)
	return append(out, rest...)
}

// clears reports whether sc meets its own evidence-dependent threshold.
func (e *Engine) clears(sc ScoredCandidate, kind MediaKind) bool {
	return sc.Score >= e.profile.Accept.Threshold(sc.Signals.Evidence, kind)
}

// selectUnvalidated picks the first preferred candidate that clears its threshold.
func (e *Engine) selectUnvalidated(sorted []ScoredCandidate, kind MediaKind) Resolution {
	for _, sc := range e.preferenceOrder(sorted) {
		if e.clears(sc, kind) {
			return Accepted(sc)
		}
	}
	return Rejected(ReasonBelowThreshold)
}

// validationOrder lists the candidates to validate: exact-title candidates
// from the earliest tier that has any, then up to MaxAttempts non-exact ones.
// Only candidates clearing their threshold are listed.
func (e *Engine) validationOrder(sorted []ScoredCandidate, kind MediaKind) []ScoredCandidate {
	earliest := -1
	for _, sc := range sorted {
		if sc.Signals.Exact && (earliest < 0 || sc.Candidate.Tier < earliest) {
			earliest = sc.Candidate.Tier
		}
	}

	var pool, others []ScoredCandidate
	for _, sc := range e.preferenceOrder(sorted) {
		if !e.clears(sc, kind) {
			continue
		}
		if sc.Signals.Exact && sc.Candidate.Tier == earliest {
			pool = append(pool, sc)
			continue
		}
		if len(others) < e.profile.Validate.MaxAttempts {
			others = append(others, sc)
		}
	}
	return append(pool, others...)
}

// reasonRank orders rejection reasons by how much they say about the query.
func reasonRank(r Reason) int {
	switch r {
	case ReasonFailedValidation:
		return 3
	case ReasonBelowThreshold:
		return 2
	case ReasonNoCandidates:
		return 1
	default:
		return 0
	}
}

// strongerRejection keeps the rejection with the higher precedence; ties keep a.
func strongerRejection(a, b Resolution) Resolution {
	if reasonRank(b.Reason) > reasonRank(a.Reason) {
		return b
	}
	return a
}
