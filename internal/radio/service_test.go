package radio_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"soundmatch/internal/radio"
	"soundmatch/internal/resolve"
	"soundmatch/internal/services"
	"soundmatch/internal/testsupport"
)

func playlist(id, name, description string) resolve.Candidate {
	return resolve.Candidate{
		ID:          id,
		DisplayName: name,
		Description: description,
		Kind:        resolve.KindContainer,
		Entity:      resolve.EntityPlaylist,
		MemberCount: 50,
		Curator:     "spotify",
	}
}

func ids(ranked []resolve.ScoredCandidate) []string {
	out := make([]string, 0, len(ranked))
	for _, sc := range ranked {
		out = append(out, sc.Candidate.ID)
	}
	return out
}

func TestIdealTitles(t *testing.T) {
	if got, want := radio.IdealTitles("Genesis", radio.KindRadio), []string{"Genesis Radio", "Radio Genesis", "Rádio de Genesis"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("radio titles = %q, want %q", got, want)
	}
	if got, want := radio.IdealTitles(" Genesis ", radio.KindThisIs), []string{"This Is Genesis"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("this is titles = %q, want %q", got, want)
	}
}

func TestTitleOnly(t *testing.T) {
	tests := []struct {
		artist string
		want   bool
	}{
		{"Yes", true},
		{"ABBA", false},
		{"Love", true},
		{"Genesis", false},
		{"Mø", true},
	}
	for _, tt := range tests {
		if got := radio.TitleOnly(tt.artist); got != tt.want {
			t.Errorf("TitleOnly(%q) = %v, want %v", tt.artist, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]radio.Kind{"": radio.KindRadio, "Radio": radio.KindRadio, "this-is": radio.KindThisIs, "This Is": radio.KindThisIs} {
		got, err := radio.ParseKind(input)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := radio.ParseKind("mixtape"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFindValidatesAgainstArtist(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis", playlist("radio", "Genesis Radio", "")).
		SetMembers("radio", testsupport.Tracks(80, 40, "artist-genesis"))
	svc := radio.NewService(catalog)

	got, err := svc.Find(context.Background(), radio.Request{Artist: "Genesis", ArtistID: "artist-genesis"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	res := got.Resolution
	if !res.Accepted || res.Match.Candidate.ID != "radio" {
		t.Fatalf("expected radio playlist accepted, got %+v", res)
	}
	if res.Validation == nil || !res.Validation.Passed || res.Validation.Hits != 40 {
		t.Fatalf("expected passing validation, got %+v", res.Validation)
	}
}

func TestFindThisIsSearchesThisIsTitle(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "this is genesis", playlist("ti", "This Is Genesis", ""))
	svc := radio.NewService(catalog)

	got, err := svc.Find(context.Background(), radio.Request{Artist: "Genesis", Kind: radio.KindThisIs})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !got.Resolution.Accepted || got.Resolution.Match.Candidate.ID != "ti" {
		t.Fatalf("expected This Is playlist, got %+v", got.Resolution)
	}
	first := catalog.SearchCalls()[0]
	if first.Query != `"This Is Genesis"` || first.Entity != resolve.EntityPlaylist {
		t.Fatalf("unexpected first search %+v", first)
	}
}

func TestShortNamesMustAppearInTitle(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "yes",
			playlist("rock", "Rock Radio", "featuring Yes, Rush and more"),
			playlist("yes", "Yes Radio", ""),
		)
	svc := radio.NewService(catalog)

	ranked, err := svc.Candidates(context.Background(), radio.Request{Artist: "Yes"}, 10)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"yes"}) {
		t.Fatalf("candidates = %v, want [yes]", got)
	}
}

func TestLongNamesMayAppearInDescription(t *testing.T) {
	catalog := testsupport.NewFakeCatalog().
		On(resolve.EntityPlaylist, "genesis",
			playlist("legends", "Prog Legends Radio", "Genesis, Yes and friends"),
			playlist("other", "Chill Radio", "lofi beats"),
		)
	svc := radio.NewService(catalog)

	ranked, err := svc.Candidates(context.Background(), radio.Request{Artist: "Genesis"}, 10)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if got := ids(ranked); !reflect.DeepEqual(got, []string{"legends"}) {
		t.Fatalf("candidates = %v, want [legends]", got)
	}
}

func TestFindRequiresArtist(t *testing.T) {
	svc := radio.NewService(testsupport.NewFakeCatalog())
	_, err := svc.Find(context.Background(), radio.Request{Artist: " "})
	if !errors.Is(err, services.ErrValidation) || !errors.Is(err, resolve.ErrEmptyTitle) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Candidates(context.Background(), radio.Request{Artist: "Genesis", Kind: "bogus"}, 5); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}
