// Package services holds the plumbing shared by the soundtrack, radio and
// genre call sites.
//
// Key responsibilities:
//   - Tune, which applies the [engine] and [weights] configuration sections
//     to a call-site profile.
//   - CachedResolve, CachedResolveEnriched and CachedRank, the read-through
//     layer between a call site, its resolution cache and the engine. Cache
//     failures degrade to a live lookup with a warning.
//   - Structured error markers plus Wrap, Classify and ExitCode so failures
//     surface with consistent messages and CLI exit statuses.
package services
