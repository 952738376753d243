package services

import (
	"soundmatch/internal/config"
	"soundmatch/internal/resolve"
)

// Tune applies the [engine] and [weights] configuration to a call-site
// profile. A nil config returns the profile unchanged.
func Tune(p resolve.Profile, cfg *config.Config) resolve.Profile {
	if cfg == nil {
		return p
	}
	e := cfg.Engine

	p.Fetch.Scopes = cfg.Scopes()
	if e.PageSize > 0 {
		p.Fetch.PageSize = e.PageSize
	}
	if e.Parallelism > 0 {
		p.Fetch.Parallelism = e.Parallelism
	}
	if timeout := cfg.CallTimeout(); timeout > 0 {
		p.Fetch.CallTimeout = timeout
	}
	if e.MinCandidates > 0 {
		p.Fetch.MinCandidates = e.MinCandidates
	}
	p.Fetch.MaxTier = e.MaxTier

	if e.AcceptScore > 0 {
		p.Accept.BaseScore = e.AcceptScore
	}
	if e.NoEvidenceMargin > 0 {
		p.Accept.NoEvidenceMargin = e.NoEvidenceMargin
	}
	p.Accept.SeriesRelief = e.SeriesRelief

	if e.SampleCap > 0 {
		p.Validate.SampleCap = e.SampleCap
	}
	if e.MinHitRatio > 0 {
		p.Validate.MinHitRatio = e.MinHitRatio
	}
	if e.MinHits > 0 {
		p.Validate.MinHits = e.MinHits
	}
	if e.MaxValidationAttempts > 0 {
		p.Validate.MaxAttempts = e.MaxValidationAttempts
	}
	if p.Expand.Enabled {
		p.Expand.Seeds = e.ExpandSeeds
		p.Expand.Enabled = e.ExpandSeeds > 0
	}

	p.Weights = tuneWeights(p.Weights, cfg.Weights)
	return p
}

func tuneWeights(w resolve.Weights, o config.Weights) resolve.Weights {
	override := func(dst *float64, value float64) {
		if value != 0 {
			*dst = value
		}
	}
	override(&w.StrongEvidence, o.StrongEvidence)
	override(&w.WeakEvidence, o.WeakEvidence)
	override(&w.NoEvidencePenalty, o.NoEvidence)
	override(&w.NegativePenalty, o.NegativeKeyword)
	override(&w.RealCollection, o.RealCollection)
	override(&w.TinyCollectionPenalty, o.TinyCollection)
	override(&w.Compilation, o.Compilation)
	override(&w.YearPenaltyPerYear, o.YearPenaltyPerYear)
	override(&w.YearPenaltyCap, o.YearPenaltyCap)
	override(&w.ContributorHint, o.ContributorHint)
	override(&w.DistinctiveAllMissingPenalty, o.DistinctiveAllMissing)
	override(&w.DistinctivePartialPenalty, o.DistinctivePartial)
	override(&w.KnownCurator, o.KnownCurator)
	return w
}
