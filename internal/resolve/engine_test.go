package resolve_test

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"soundmatch/internal/resolve"
	"soundmatch/internal/testsupport"
)

func playlist(id, name, curator string, count int) resolve.Candidate {
	return resolve.Candidate{
		ID:          id,
		DisplayName: name,
		Kind:        resolve.KindContainer,
		Entity:      resolve.EntityPlaylist,
		MemberCount: count,
		Curator:     curator,
	}
}

func TestResolveNightfall(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityAlbum, "nightfall",
			album("karaoke", "Nightfall Karaoke Hits", 14, 2001),
			album("ost", "Nightfall (Original Motion Picture Soundtrack)", 18, 2001),
		)
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())

	res, err := engine.Resolve(context.Background(), resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaMovie})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Accepted || res.Match.Candidate.ID != "ost" {
		t.Fatalf("expected OST accepted, got %+v", res)
	}
	if res.Entity != resolve.EntityAlbum {
		t.Fatalf("expected album entity, got %q", res.Entity)
	}
	if !approx(res.Match.Score, 140) {
		t.Fatalf("expected score 140, got %v", res.Match.Score)
	}
}

func TestResolveEchoBelowThreshold(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityAlbum, "echo", album("echo", "Echo", 1, 0))
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())

	res, err := engine.Resolve(context.Background(), resolve.Query{Title: "Echo"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Accepted || res.Reason != resolve.ReasonBelowThreshold {
		t.Fatalf("expected BelowThreshold, got %+v", res)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	engine := resolve.NewEngine(testsupport.NewFakeCatalog(), resolve.SoundtrackProfile())
	res, err := engine.Resolve(context.Background(), resolve.Query{Title: "Unheard Of"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Accepted || res.Reason != resolve.ReasonNoCandidates {
		t.Fatalf("expected NoCandidates, got %+v", res)
	}
}

func TestResolveEmptyTitle(t *testing.T) {
	engine := resolve.NewEngine(testsupport.NewFakeCatalog(), resolve.SoundtrackProfile())
	if _, err := engine.Resolve(context.Background(), resolve.Query{Title: " \t"}); !errors.Is(err, resolve.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if _, err := engine.Rank(context.Background(), resolve.Query{}, 5); !errors.Is(err, resolve.ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle from Rank, got %v", err)
	}
}

func TestResolveFallsBackToPlaylists(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "harbor lights",
			playlist("pl", "Harbor Lights Original Soundtrack", "someone", 40))
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())

	res, err := engine.Resolve(context.Background(), resolve.Query{Title: "Harbor Lights", MediaKind: resolve.MediaSeries})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Accepted || res.Entity != resolve.EntityPlaylist || res.Match.Candidate.ID != "pl" {
		t.Fatalf("expected playlist fallback, got %+v", res)
	}
}

func TestResolveAbsorbsTransientFailures(t *testing.T) {
	unavailable := &resolve.UnavailableError{Source: "catalog", RetryAfter: time.Second}
	catalog := testsupport.NewFakeCatalog().
		Fail(resolve.EntityAlbum, `album:"nightfall"`, unavailable).
		Fail(resolve.EntityAlbum, "(soundtrack", unavailable).
		On(resolve.EntityAlbum, "nightfall", album("ost", "Nightfall Original Soundtrack", 20, 2001))
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())

	res, err := engine.Resolve(context.Background(), resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaMovie})
	if err != nil {
		t.Fatalf("transient failures must not escape: %v", err)
	}
	if !res.Accepted || res.Match.Candidate.Tier != 2 {
		t.Fatalf("expected tier 2 candidate accepted, got %+v", res)
	}
}

func TestResolveCancelled(t *testing.T) {
	engine := resolve.NewEngine(testsupport.NewFakeCatalog(), resolve.SoundtrackProfile())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Resolve(ctx, resolve.Query{Title: "Nightfall"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResolveDeadlineStopsBlockedSearches(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().BlockSearches()
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := engine.Resolve(ctx, resolve.Query{Title: "Nightfall"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("resolve did not stop promptly: %v", elapsed)
	}
}

func TestFetchStopsAtMinCandidates(t *testing.T) {
	var many []resolve.Candidate
	for i := 0; i < 10; i++ {
		many = append(many, album("a"+strconv.Itoa(i), "Nightfall Soundtrack "+strconv.Itoa(i), 12, 0))
	}
	catalog := testsupport.NewFakeCatalog().On(resolve.EntityAlbum, `album:"nightfall"`, many...)
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())

	if _, err := engine.Resolve(context.Background(), resolve.Query{Title: "Nightfall"}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, call := range catalog.SearchCalls() {
		if call.Entity == resolve.EntityAlbum && call.Query == "Nightfall" {
			t.Fatalf("tier 2 searched although tier 0 produced enough candidates")
		}
		if call.Limit != 20 {
			t.Fatalf("expected default page size 20, got %d", call.Limit)
		}
	}
}

func TestFetchScopeFallback(t *testing.T) {
	profile := resolve.SoundtrackProfile()
	profile.Fetch.Scopes = []string{"BR", ""}
	catalog := testsupport.NewFakeCatalog().
		OnScope(resolve.EntityAlbum, "", "nightfall", album("ost", "Nightfall Original Soundtrack", 20, 0))
	engine := resolve.NewEngine(catalog, profile)

	res, err := engine.Resolve(context.Background(), resolve.Query{Title: "Nightfall"})
	if err != nil || !res.Accepted {
		t.Fatalf("expected acceptance via unrestricted scope, got %+v, %v", res, err)
	}

	lastScope := map[string]string{}
	for _, call := range catalog.SearchCalls() {
		if call.Entity != resolve.EntityAlbum {
			continue
		}
		if call.Scope == "" && lastScope[call.Query] != "BR" {
			t.Fatalf("unrestricted search for %q issued before restricted scope", call.Query)
		}
		lastScope[call.Query] = call.Scope
	}
}

func TestFetchRestrictedScopeWins(t *testing.T) {
	profile := resolve.SoundtrackProfile()
	profile.Fetch.Scopes = []string{"BR", ""}
	catalog := testsupport.NewFakeCatalog().
		OnScope(resolve.EntityAlbum, "BR", "nightfall", album("br", "Nightfall Trilha Sonora Original", 20, 0))
	engine := resolve.NewEngine(catalog, profile)

	if _, err := engine.Resolve(context.Background(), resolve.Query{Title: "Nightfall"}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, call := range catalog.SearchCalls() {
		if call.Entity == resolve.EntityAlbum && call.Scope == "" {
			t.Fatalf("unrestricted scope searched although restricted returned results: %+v", call)
		}
	}
}

func radioQuery(reference string) resolve.Query {
	return resolve.Query{
		Title:       "Genesis Radio",
		AltTitles:   []string{"Radio Genesis"},
		HintTerms:   []string{"Genesis"},
		ReferenceID: reference,
	}
}

func TestResolveNineOfEightyFailsValidation(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis", playlist("radio", "Genesis Radio", "spotify", 50)).
		SetMembers("radio", testsupport.Tracks(120, 9, "artist-genesis"))
	engine := resolve.NewEngine(catalog, resolve.RadioProfile())

	res, err := engine.Resolve(context.Background(), radioQuery("artist-genesis"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Accepted || res.Reason != resolve.ReasonFailedValidation {
		t.Fatalf("expected FailedValidation, got %+v", res)
	}
	if res.Validation == nil || res.Validation.Sampled != 80 || res.Validation.Hits != 9 {
		t.Fatalf("expected 9 hits over 80 sampled, got %+v", res.Validation)
	}
}

func TestResolveTenHitsPassValidation(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis", playlist("radio", "Genesis Radio", "spotify", 50)).
		SetMembers("radio", testsupport.Tracks(120, 10, "artist-genesis"))
	engine := resolve.NewEngine(catalog, resolve.RadioProfile())

	res, err := engine.Resolve(context.Background(), radioQuery("artist-genesis"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Accepted || res.Validation == nil || !res.Validation.Passed {
		t.Fatalf("expected validated acceptance, got %+v", res)
	}
}

func TestResolvePrefersCuratedExactTitle(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis",
			playlist("fan", "Genesis Radio", "fan123", 200),
			playlist("official", "Genesis Radio", "spotify", 50),
		).
		SetMembers("fan", testsupport.Tracks(80, 80, "artist-genesis")).
		SetMembers("official", testsupport.Tracks(80, 40, "artist-genesis"))
	engine := resolve.NewEngine(catalog, resolve.RadioProfile())

	res, err := engine.Resolve(context.Background(), radioQuery("artist-genesis"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Accepted || res.Match.Candidate.ID != "official" {
		t.Fatalf("expected curated playlist, got %+v", res)
	}
	if catalog.MemberCalls("fan") != 0 {
		t.Fatal("lower-preference candidate should not be validated after a pass")
	}
}

func TestResolveBoundsValidationAttempts(t *testing.T) {
	catalog := testsupport.NewFakeCatalog()
	var results []resolve.Candidate
	for i := 1; i <= 7; i++ {
		id := "vol" + strconv.Itoa(i)
		results = append(results, playlist(id, "Genesis Radio Vol "+strconv.Itoa(i), "fan", 40))
		catalog.SetMembers(id, testsupport.Tracks(80, 0, "artist-genesis"))
	}
	catalog.On(resolve.EntityPlaylist, "genesis", results...)
	engine := resolve.NewEngine(catalog, resolve.RadioProfile())

	res, err := engine.Resolve(context.Background(), radioQuery("artist-genesis"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Reason != resolve.ReasonFailedValidation {
		t.Fatalf("expected FailedValidation, got %+v", res)
	}
	validated := 0
	for i := 1; i <= 7; i++ {
		if catalog.MemberCalls("vol"+strconv.Itoa(i)) > 0 {
			validated++
		}
	}
	if validated != 5 {
		t.Fatalf("expected 5 validation attempts, got %d", validated)
	}
}

func TestValidationUsesPartialSampleOnPagingError(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis", playlist("radio", "Genesis Radio", "spotify", 50)).
		SetMembers("radio", testsupport.Tracks(120, 25, "artist-genesis")).
		FailMembersAfter("radio", 1, &resolve.UnavailableError{Source: "catalog"})
	engine := resolve.NewEngine(catalog, resolve.RadioProfile())

	res, err := engine.Resolve(context.Background(), radioQuery("artist-genesis"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Accepted || res.Validation.Sampled != 50 || res.Validation.Hits != 25 {
		t.Fatalf("expected acceptance from a 50-member sample, got %+v", res)
	}
}

func TestValidationFailsWithNothingSampled(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis", playlist("radio", "Genesis Radio", "spotify", 50)).
		FailMembersAfter("radio", 0, errors.New("boom"))
	engine := resolve.NewEngine(catalog, resolve.RadioProfile())

	res, err := engine.Resolve(context.Background(), radioQuery("artist-genesis"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Reason != resolve.ReasonFailedValidation || res.Validation.Sampled != 0 {
		t.Fatalf("expected failed validation with empty sample, got %+v", res)
	}
}

func TestResolveDeterministic(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityAlbum, "nightfall",
			album("b", "Nightfall Soundtrack", 12, 2001),
			album("a", "Nightfall Soundtrack", 12, 2001),
			album("c", "Nightfall Score", 2, 2001),
		)
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())
	q := resolve.Query{Title: "Nightfall", Year: 2001, MediaKind: resolve.MediaMovie}

	first, err := engine.Resolve(context.Background(), q)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !first.Accepted || first.Match.Candidate.ID != "a" {
		t.Fatalf("expected tie broken by id, got %+v", first)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Resolve(context.Background(), q)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("non-deterministic resolution: %+v vs %+v", first, again)
		}
	}
}

func TestRankDeduplicatesAcrossVariants(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityAlbum, "nightfall",
			album("ost", "Nightfall Original Soundtrack", 20, 0),
			album("ost", "Nightfall Original Soundtrack", 20, 0),
			album("score", "Nightfall Score", 20, 0),
		)
	engine := resolve.NewEngine(catalog, resolve.SoundtrackProfile())

	ranked, err := engine.Rank(context.Background(), resolve.Query{Title: "Nightfall"}, 0)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	seen := map[string]bool{}
	for _, sc := range ranked {
		if seen[sc.Candidate.ID] {
			t.Fatalf("duplicate candidate %q", sc.Candidate.ID)
		}
		seen[sc.Candidate.ID] = true
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 unique candidates, got %d", len(ranked))
	}
}
