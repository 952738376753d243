package main

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"soundmatch/internal/config"
	"soundmatch/internal/genre"
	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
	"soundmatch/internal/soundtrack"
)

func nightfallAlbum() resolve.Candidate {
	return resolve.Candidate{
		ID:           "spotify:album:nightfall",
		DisplayName:  "Nightfall (Original Motion Picture Soundtrack)",
		Kind:         resolve.KindContainer,
		Entity:       resolve.EntityAlbum,
		MemberCount:  24,
		ReleaseYear:  2001,
		Contributors: []string{"Ana Reyes"},
	}
}

func TestSoundtrackJSONThenCached(t *testing.T) {
	env := setupCLITestEnv(t)
	env.catalog.On(resolve.EntityAlbum, "nightfall", nightfallAlbum())

	out, _, err := runCLI(t, env, "--json", "soundtrack", "Nightfall", "--year", "2001", "--composer", "Ana Reyes")
	if err != nil {
		t.Fatalf("soundtrack: %v", err)
	}
	var result soundtrack.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !result.Resolution.Accepted || result.Resolution.Match == nil || result.Resolution.Match.Candidate.ID != "spotify:album:nightfall" {
		t.Fatalf("expected accepted album, got %+v", result.Resolution)
	}
	if result.Cached {
		t.Fatal("first lookup should be live")
	}
	calls := len(env.catalog.SearchCalls())

	out, _, err = runCLI(t, env, "soundtrack", "Nightfall", "--year", "2001", "--composer", "Ana Reyes")
	if err != nil {
		t.Fatalf("soundtrack: %v", err)
	}
	requireContains(t, out, `Matched album "Nightfall (Original Motion Picture Soundtrack)" (cache)`)
	requireContains(t, out, "Composers: Ana Reyes")
	if got := len(env.catalog.SearchCalls()); got != calls {
		t.Fatalf("cached lookup searched again: %d calls, want %d", got, calls)
	}
}

func TestSoundtrackNoMatch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "soundtrack", "Unheard Of")
	if err != nil {
		t.Fatalf("soundtrack: %v", err)
	}
	requireContains(t, out, "No match: no_candidates")
}

func TestSoundtrackPlanDoesNotBuildCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	env.deps.newCatalog = func(*config.Config, *slog.Logger) (resolve.Catalog, error) {
		return nil, errCatalogUnavailable
	}

	out, _, err := runCLI(t, env, "soundtrack", "Nightfall", "--year", "2001", "--plan")
	if err != nil {
		t.Fatalf("soundtrack --plan: %v", err)
	}
	requireContains(t, out, `"Nightfall"`)
	requireContains(t, strings.ToLower(out), "tier")
}

func TestSoundtrackEmptyTitleIsValidationError(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "soundtrack", " ")
	if got := services.ExitCode(err); got != 2 {
		t.Fatalf("exit code = %d, want 2 (err %v)", got, err)
	}
}

func TestRadioCandidatesTable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.catalog.On(resolve.EntityPlaylist, "genesis",
		resolve.Candidate{
			ID:          "spotify:playlist:genesis-radio",
			DisplayName: "Genesis Radio",
			Kind:        resolve.KindContainer,
			Entity:      resolve.EntityPlaylist,
			MemberCount: 50,
			Curator:     "spotify",
		},
		resolve.Candidate{
			ID:          "spotify:playlist:chill",
			DisplayName: "Chill Radio",
			Description: "lofi beats",
			Kind:        resolve.KindContainer,
			Entity:      resolve.EntityPlaylist,
			MemberCount: 50,
		},
	)

	out, _, err := runCLI(t, env, "radio", "Genesis", "--candidates")
	if err != nil {
		t.Fatalf("radio --candidates: %v", err)
	}
	requireContains(t, out, "Genesis Radio")
	if strings.Contains(out, "Chill Radio") {
		t.Fatalf("playlist without the artist should be filtered:\n%s", out)
	}
}

func TestRadioRejectsUnknownKind(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "radio", "Genesis", "--kind", "mixtape")
	if got := services.ExitCode(err); got != 2 {
		t.Fatalf("exit code = %d, want 2 (err %v)", got, err)
	}
}

func TestArtistsJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	artist := func(id, name string, popularity int) resolve.Candidate {
		return resolve.Candidate{
			ID:          id,
			DisplayName: name,
			Kind:        resolve.KindItem,
			Entity:      resolve.EntityArtist,
			Tags:        []string{"progressive rock"},
			Popularity:  popularity,
		}
	}
	env.catalog.On(resolve.EntityArtist, "progressive rock", artist("a", "Alpha", 80), artist("b", "Beta", 50))

	out, _, err := runCLI(t, env, "--json", "artists", "prog", "rock", "--ancestor", "rock", "--limit", "5")
	if err != nil {
		t.Fatalf("artists: %v", err)
	}
	var result genre.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.Genre != "progressive rock" || len(result.Context) != 1 || result.Context[0] != "rock" {
		t.Fatalf("unexpected header %+v", result)
	}
	if len(result.Artists) != 2 || result.Artists[0].Candidate.ID != "a" {
		t.Fatalf("unexpected artists %+v", result.Artists)
	}
}

func TestArtistsListsGenrePlaylistsWhenNoArtists(t *testing.T) {
	env := setupCLITestEnv(t)
	env.catalog.On(resolve.EntityPlaylist, "shoegaze", resolve.Candidate{
		ID:          "spotify:playlist:shoegaze",
		DisplayName: "Shoegaze Essentials",
		Kind:        resolve.KindContainer,
		Entity:      resolve.EntityPlaylist,
		MemberCount: 50,
		Curator:     "spotify",
	})

	out, _, err := runCLI(t, env, "artists", "shoegaze")
	if err != nil {
		t.Fatalf("artists: %v", err)
	}
	requireContains(t, out, "No artists found")
	requireContains(t, out, "Genre playlists:")
	requireContains(t, out, "Shoegaze Essentials")
}

func TestRankUnknownProfile(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "rank", "Nightfall", "--profile", "podcast")
	if got := services.ExitCode(err); got != 2 {
		t.Fatalf("exit code = %d, want 2 (err %v)", got, err)
	}
	if err == nil || !strings.Contains(err.Error(), "genre-artists") {
		t.Fatalf("error should list profiles, got %v", err)
	}
}

func TestRankExplain(t *testing.T) {
	env := setupCLITestEnv(t)
	env.catalog.On(resolve.EntityAlbum, "nightfall", nightfallAlbum())

	out, _, err := runCLI(t, env, "rank", "Nightfall", "--year", "2001", "--explain")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	requireContains(t, out, "spotify:album:nightfall")
	requireContains(t, strings.ToLower(out), "sim")
}

func TestMissingCredentialsIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t)
	env.deps = defaultDependencies()
	writeTestConfig(t, env.configPath, filepath.Join(t.TempDir(), "cache.db"), false)

	_, _, err := runCLI(t, env, "soundtrack", "Nightfall")
	if got := services.ExitCode(err); got != 2 {
		t.Fatalf("exit code = %d, want 2 (err %v)", got, err)
	}
	if !strings.Contains(err.Error(), "client_id") {
		t.Fatalf("error should name the missing setting, got %v", err)
	}
}
