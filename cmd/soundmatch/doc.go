// Package main implements the soundmatch command line.
//
// Lookups (soundtrack, radio, artists, rank) share one configuration load,
// one structured logger and the optional resolution cache. Results print as
// tables on a terminal or as JSON with --json.
package main
