// Package genre ranks the artists most associated with a music genre.
//
// Genre names are canonicalized through a small synonym table, the nearest
// ancestors of the genre act as fallback search terms, and sparse results are
// widened one hop through related artists.
package genre
