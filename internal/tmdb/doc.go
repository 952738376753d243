// Package tmdb provides the minimal TMDB API client used to find soundtrack
// composers.
//
// It exposes movie and TV search with an optional year filter and credits
// lookups, plus Composers, which chains the two and returns composer names
// for use as contributor hints. Options allow tests to supply custom HTTP
// clients.
package tmdb
