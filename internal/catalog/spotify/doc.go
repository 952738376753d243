// Package spotify implements the resolve catalog ports on top of the Spotify
// Web API.
//
// Requests authenticate with the client-credentials flow and share one rate
// limiter. Search results map onto resolve.Candidate; album results are
// enriched with track counts through a batched album lookup. Member paging
// covers playlists and albums, and related lookups cover artists.
// Throttling, 5xx responses, timeouts and network faults surface as
// *resolve.UnavailableError so the engine can absorb them.
package spotify
