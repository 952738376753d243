package spotify

import (
	"strconv"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"soundmatch/internal/resolve"
)

// URI builds the "spotify:<kind>:<id>" form used as candidate id.
func URI(kind string, id spotifyapi.ID) string {
	return "spotify:" + kind + ":" + string(id)
}

// ParseURI splits a Spotify URI. A bare id is not accepted.
func ParseURI(uri string) (kind string, id spotifyapi.ID, ok bool) {
	parts := strings.Split(strings.TrimSpace(uri), ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], spotifyapi.ID(parts[2]), true
}

// ArtistURI turns a bare artist id or URI into an artist URI.
func ArtistURI(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if _, _, ok := ParseURI(id); ok {
		return id
	}
	return URI("artist", spotifyapi.ID(id))
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func artistNames(artists []spotifyapi.SimpleArtist) ([]string, []string) {
	names := make([]string, 0, len(artists))
	ids := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
		if a.ID != "" {
			ids = append(ids, URI("artist", a.ID))
		}
	}
	return names, ids
}

func albumCandidates(albums []spotifyapi.SimpleAlbum) []resolve.Candidate {
	out := make([]resolve.Candidate, 0, len(albums))
	for _, a := range albums {
		if a.ID == "" {
			continue
		}
		names, ids := artistNames(a.Artists)
		out = append(out, resolve.Candidate{
			ID:             URI("album", a.ID),
			DisplayName:    a.Name,
			Kind:           resolve.KindContainer,
			Entity:         resolve.EntityAlbum,
			ReleaseYear:    releaseYear(a.ReleaseDate),
			Contributors:   names,
			ContributorIDs: ids,
			ExternalRef:    a.ExternalURLs["spotify"],
			Subtype:        a.AlbumType,
		})
	}
	return out
}

func playlistCandidates(playlists []spotifyapi.SimplePlaylist) []resolve.Candidate {
	out := make([]resolve.Candidate, 0, len(playlists))
	for _, p := range playlists {
		if p.ID == "" {
			continue
		}
		out = append(out, resolve.Candidate{
			ID:          URI("playlist", p.ID),
			DisplayName: p.Name,
			Kind:        resolve.KindContainer,
			Entity:      resolve.EntityPlaylist,
			MemberCount: int(p.Tracks.Total),
			Curator:     p.Owner.ID,
			Description: p.Description,
			ExternalRef: p.ExternalURLs["spotify"],
		})
	}
	return out
}

func artistCandidates(artists []spotifyapi.FullArtist) []resolve.Candidate {
	out := make([]resolve.Candidate, 0, len(artists))
	for _, a := range artists {
		if a.ID == "" {
			continue
		}
		out = append(out, resolve.Candidate{
			ID:          URI("artist", a.ID),
			DisplayName: a.Name,
			Kind:        resolve.KindItem,
			Entity:      resolve.EntityArtist,
			Tags:        append([]string(nil), a.Genres...),
			Popularity:  int(a.Popularity),
			ExternalRef: a.ExternalURLs["spotify"],
		})
	}
	return out
}

func trackCandidates(tracks []spotifyapi.FullTrack) []resolve.Candidate {
	out := make([]resolve.Candidate, 0, len(tracks))
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		out = append(out, trackCandidate(t))
	}
	return out
}

func trackCandidate(t spotifyapi.FullTrack) resolve.Candidate {
	c := simpleTrackCandidate(t.SimpleTrack)
	c.ReleaseYear = releaseYear(t.Album.ReleaseDate)
	c.Popularity = int(t.Popularity)
	return c
}

func simpleTrackCandidate(t spotifyapi.SimpleTrack) resolve.Candidate {
	names, ids := artistNames(t.Artists)
	c := resolve.Candidate{
		DisplayName:    t.Name,
		Kind:           resolve.KindItem,
		Entity:         resolve.EntityTrack,
		Contributors:   names,
		ContributorIDs: ids,
		ExternalRef:    t.ExternalURLs["spotify"],
	}
	if t.ID != "" {
		c.ID = URI("track", t.ID)
	}
	return c
}
