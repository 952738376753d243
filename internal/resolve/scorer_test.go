package resolve_test

import (
	"math"
	"testing"

	"soundmatch/internal/resolve"
)

func album(id, name string, count, year int) resolve.Candidate {
	return resolve.Candidate{
		ID:          id,
		DisplayName: name,
		Kind:        resolve.KindContainer,
		Entity:      resolve.EntityAlbum,
		MemberCount: count,
		ReleaseYear: year,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreNightfallCandidates(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	q := resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaMovie}

	ost := scorer.Score(album("ost", "Nightfall (Original Motion Picture Soundtrack)", 18, 2001), q)
	if !approx(ost.Score, 140) {
		t.Fatalf("OST score = %v (%+v), want 140", ost.Score, ost.Signals)
	}
	if ost.Signals.Evidence != resolve.EvidenceStrong {
		t.Fatalf("expected strong evidence, got %s", ost.Signals.Evidence)
	}

	karaoke := scorer.Score(album("karaoke", "Nightfall Karaoke Hits", 14, 2001), q)
	if !approx(karaoke.Score, 45) {
		t.Fatalf("karaoke score = %v (%+v), want 45", karaoke.Score, karaoke.Signals)
	}
	if karaoke.Signals.Negative != -40 || karaoke.Signals.Keyword != -25 {
		t.Fatalf("unexpected karaoke signals: %+v", karaoke.Signals)
	}
}

func TestScoreStrongEvidenceOnlyFromName(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	q := resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaMovie}
	tests := []struct {
		name        string
		displayName string
		description string
		want        resolve.Evidence
	}{
		{"name carries the phrase", "Nightfall (Original Soundtrack)", "", resolve.EvidenceStrong},
		{"description phrase is weak", "Nightfall Karaoke Hits", "Songs from the original soundtrack", resolve.EvidenceWeak},
		{"description without phrases", "Nightfall", "A collection of songs", resolve.EvidenceNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := album("x", tt.displayName, 12, 2001)
			c.Description = tt.description
			if got := scorer.Score(c, q).Signals.Evidence; got != tt.want {
				t.Fatalf("evidence = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScoreGenrePlaylists(t *testing.T) {
	scorer := resolve.NewScorer(resolve.GenrePlaylistsProfile())
	q := resolve.Query{Title: "shoegaze", Context: []string{"rock"}}

	named := resolve.Candidate{ID: "p1", DisplayName: "Shoegaze Essentials", Kind: resolve.KindContainer, Curator: "spotify", MemberCount: 50}
	sc := scorer.Score(named, q)
	if sc.Signals.Evidence != resolve.EvidenceStrong || sc.Signals.Curator != 5 {
		t.Fatalf("unexpected signals: %+v", sc.Signals)
	}
	if sc.Score < resolve.GenrePlaylistsProfile().RankFloor {
		t.Fatalf("score %v below floor", sc.Score)
	}

	described := resolve.Candidate{ID: "p2", DisplayName: "Late Night Fuzz", Description: "shoegaze and dream pop", Kind: resolve.KindContainer, MemberCount: 50}
	if got := scorer.Score(described, q).Signals.Evidence; got == resolve.EvidenceStrong {
		t.Fatal("description alone must not give strong evidence")
	}
}

func TestScoreTinyCollectionWithoutEvidence(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	sc := scorer.Score(album("echo", "Echo", 1, 0), resolve.Query{Title: "Echo"})
	if !approx(sc.Score, 40) {
		t.Fatalf("score = %v (%+v), want 40", sc.Score, sc.Signals)
	}
	if !sc.Signals.Exact {
		t.Fatal("expected exact title flag")
	}
}

func TestScoreTotalMatchesSignals(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	q := resolve.Query{Title: "Dune: Part Two", Year: 2024, MediaKind: resolve.MediaMovie, HintTerms: []string{"Hans Zimmer"}}
	c := album("d2", "Dune: Part Two (Original Motion Picture Soundtrack)", 20, 2024)
	c.Contributors = []string{"Hans Zimmer"}
	c.Subtype = "compilation"
	sc := scorer.Score(c, q)
	if !approx(sc.Score, sc.Signals.Total()) {
		t.Fatalf("score %v != signal total %v", sc.Score, sc.Signals.Total())
	}
	if sc.Signals.ContributorHint != 15 {
		t.Errorf("expected contributor hint bonus, got %+v", sc.Signals)
	}
	if sc.Signals.Structure != 13 {
		t.Errorf("expected real collection plus compilation bonus, got %v", sc.Signals.Structure)
	}
}

func TestScoreTemporal(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	c := album("x", "Nightfall Original Soundtrack", 12, 2009)

	movie := scorer.Score(c, resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaMovie})
	if movie.Signals.Temporal != -30 {
		t.Errorf("expected capped year penalty, got %v", movie.Signals.Temporal)
	}
	near := scorer.Score(c, resolve.Query{Title: "Nightfall", Year: 2007, MediaKind: resolve.MediaMovie})
	if near.Signals.Temporal != -12 {
		t.Errorf("expected two-year penalty, got %v", near.Signals.Temporal)
	}
	series := scorer.Score(c, resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaSeries})
	if series.Signals.Temporal != 0 {
		t.Errorf("series must not be penalized for year, got %v", series.Signals.Temporal)
	}
}

func TestScoreDistinctiveCoverage(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	q := resolve.Query{Title: "Dune: Part Two"}

	first := scorer.Score(album("d1", "Dune (Original Motion Picture Soundtrack)", 20, 0), q)
	if first.Signals.Distinctive != -35 {
		t.Errorf("expected steep penalty when every distinctive token is missing, got %v", first.Signals.Distinctive)
	}
	second := scorer.Score(album("d2", "Dune Part Two Soundtrack", 20, 0), q)
	if second.Signals.Distinctive != 0 {
		t.Errorf("expected no penalty when covered, got %v", second.Signals.Distinctive)
	}
	if first.Score >= second.Score {
		t.Errorf("sequel soundtrack should outrank the first film: %v >= %v", first.Score, second.Score)
	}

	partial := scorer.Score(album("s", "Stranger Things Soundtrack", 20, 0), resolve.Query{Title: "Stranger Things 4"})
	if !approx(partial.Signals.Distinctive, -5) {
		t.Errorf("expected half partial penalty, got %v", partial.Signals.Distinctive)
	}
}

func TestScoreCuratorAndGenericTerms(t *testing.T) {
	scorer := resolve.NewScorer(resolve.RadioProfile())
	q := resolve.Query{Title: "Genesis Radio", HintTerms: []string{"Genesis"}}

	official := resolve.Candidate{ID: "p1", DisplayName: "Genesis Radio", Kind: resolve.KindContainer, Curator: "spotify", MemberCount: 50}
	sc := scorer.Score(official, q)
	if sc.Signals.Curator != 5 || sc.Signals.Evidence != resolve.EvidenceStrong {
		t.Fatalf("unexpected signals for official radio: %+v", sc.Signals)
	}

	generic := resolve.Candidate{ID: "p2", DisplayName: "Top 40 Radio Hits", Kind: resolve.KindContainer, MemberCount: 40}
	if got := scorer.Score(generic, q); got.Signals.Negative != -40 {
		t.Errorf("generic playlist without the artist should be penalized, got %+v", got.Signals)
	}
	mentioned := resolve.Candidate{ID: "p3", DisplayName: "Genesis Greatest Hits Radio", Kind: resolve.KindContainer, MemberCount: 40}
	if got := scorer.Score(mentioned, q); got.Signals.Negative != 0 {
		t.Errorf("generic term next to the artist name should not be penalized, got %+v", got.Signals)
	}
}

func TestScoreTagsForGenres(t *testing.T) {
	scorer := resolve.NewScorer(resolve.GenreArtistsProfile())
	q := resolve.Query{Title: "progressive rock", Context: []string{"rock"}}

	tagged := resolve.Candidate{ID: "a", DisplayName: "Any Band", Tags: []string{"art rock", "progressive rock"}, Popularity: 50}
	sc := scorer.Score(tagged, q)
	if sc.Signals.Similarity != 100 || sc.Signals.Evidence != resolve.EvidenceStrong {
		t.Fatalf("unexpected signals: %+v", sc.Signals)
	}
	if !approx(sc.Signals.Popularity, 5) {
		t.Fatalf("expected popularity term 5, got %v", sc.Signals.Popularity)
	}

	excluded := resolve.Candidate{ID: "b", DisplayName: "Other", Tags: []string{"hindustani classical", "progressive rock"}}
	if got := scorer.Score(excluded, q); got.Signals.Negative != -40 {
		t.Fatalf("expected negative tag penalty, got %+v", got.Signals)
	}
}

func TestScoreDeterministic(t *testing.T) {
	scorer := resolve.NewScorer(resolve.SoundtrackProfile())
	q := resolve.Query{Title: "Blade Runner 2049", Year: 2017, MediaKind: resolve.MediaMovie}
	c := album("br", "Blade Runner 2049 (Original Motion Picture Soundtrack)", 24, 2017)
	first := scorer.Score(c, q)
	for i := 0; i < 20; i++ {
		if got := scorer.Score(c, q); got.Score != first.Score || got.Signals != first.Signals {
			t.Fatalf("non-deterministic score: %+v vs %+v", got, first)
		}
	}
}

func TestThresholdAsymmetry(t *testing.T) {
	accept := resolve.DefaultAccept()
	tests := []struct {
		evidence resolve.Evidence
		kind     resolve.MediaKind
		want     float64
	}{
		{resolve.EvidenceStrong, resolve.MediaMovie, 70},
		{resolve.EvidenceWeak, resolve.MediaMovie, 70},
		{resolve.EvidenceNone, resolve.MediaMovie, 90},
		{resolve.EvidenceStrong, resolve.MediaSeries, 60},
		{resolve.EvidenceNone, resolve.MediaSeries, 80},
		{resolve.EvidenceNone, resolve.MediaUnspecified, 90},
	}
	for _, tt := range tests {
		if got := accept.Threshold(tt.evidence, tt.kind); got != tt.want {
			t.Errorf("Threshold(%s, %s) = %v, want %v", tt.evidence, tt.kind, got, tt.want)
		}
	}
	if accept.Threshold(resolve.EvidenceNone, resolve.MediaMovie) <= accept.Threshold(resolve.EvidenceWeak, resolve.MediaMovie) {
		t.Fatal("missing evidence must raise the bar")
	}
}

func TestValidationOrRule(t *testing.T) {
	policy := resolve.DefaultValidate()
	tests := []struct {
		name    string
		hits    int
		sampled int
		want    bool
	}{
		{"ratio passes", 8, 20, true},
		{"absolute hits pass", 10, 80, true},
		{"nine of eighty fails", 9, 80, false},
		{"half of ten passes", 5, 10, true},
		{"four of eighty fails", 4, 80, false},
		{"below both", 3, 10, false},
		{"nothing sampled", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Passes(tt.hits, tt.sampled); got != tt.want {
				t.Fatalf("Passes(%d, %d) = %v, want %v", tt.hits, tt.sampled, got, tt.want)
			}
		})
	}
}
