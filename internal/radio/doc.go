// Package radio finds an artist's radio and "This Is" playlists.
//
// The artist name is expanded into the canonical playlist names (including
// the Portuguese "Rádio de" form) and resolved with the playlist profiles.
// When the caller knows the artist's catalog id, candidate playlists are
// validated by sampling their tracks. Short or common names such as "Yes"
// only match playlists that carry the name in their title.
package radio
