// Package soundtrack resolves a film or series title to its soundtrack
// album, falling back to playlists when no album qualifies.
//
// Composer names, supplied by the caller or looked up through TMDB credits,
// become contributor hints that sharpen the exact-title searches and reward
// albums credited to the composer.
package soundtrack
