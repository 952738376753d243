// Package config loads, normalizes, and validates soundmatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, picks up a .env file when present, and
// honours environment fallbacks such as SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET
// and TMDB_API_KEY. The Config type centralizes every calibration knob the
// resolution engine exposes so thresholds and weights can be tuned without a
// rebuild.
package config
