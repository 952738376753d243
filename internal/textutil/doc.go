// Package textutil provides the text normalization and similarity primitives
// shared by every resolution profile.
//
// The primary use cases are:
//   - Folding titles to a comparable canonical form (Normalize)
//   - Extracting the distinctive tail of a title (DistinctiveTokens)
//   - Word-boundary phrase matching on folded text (ContainsPhrase)
//   - Scoring two titles on a 0..1 scale (Similarity)
//
// Normalization strips diacritics, case-folds, maps "&" and "+" to "and",
// and collapses every other non-alphanumeric run to a single space. It is
// pure, total and idempotent.
package textutil
