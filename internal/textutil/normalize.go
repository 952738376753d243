package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords never count as distinctive.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "and": {}, "in": {}, "on": {},
	"season": {}, "series": {}, "part": {}, "vol": {}, "volume": {}, "chapter": {},
	"de": {}, "da": {}, "do": {}, "das": {}, "dos": {}, "o": {}, "os": {}, "as": {},
	"la": {}, "le": {}, "el": {},
}

// titleSeparators split a title into head and tail, in priority of first occurrence.
var titleSeparators = []string{":", " - ", " – ", " — ", "–", "—", "("}

// Normalize folds text to the canonical comparison form.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Compatibility forms decompose to capitals (℡ to TEL), so fold after
	// NFKD; folding İ adds a combining dot, so decompose and strip again.
	// Casers and transformers carry state, so build them per call.
	chain := transform.Chain(
		norm.NFKD, runes.Remove(runes.In(unicode.Mn)),
		cases.Fold(),
		norm.NFKD, runes.Remove(runes.In(unicode.Mn)),
	)
	stripped, _, err := transform.String(chain, text)
	if err != nil {
		stripped = cases.Fold().String(text)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	word := func(s string) {
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteString(s)
	}
	for _, r := range stripped {
		switch {
		case r == '&' || r == '+':
			pendingSpace = true
			word("and")
			pendingSpace = true
		case r == '\'' || r == '’' || r == '`':
			// "don't" and "dont" compare equal
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word(string(r))
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokens returns the words of the normalized text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// SplitTitle splits a raw title at its first separator. ok is false when the
// title has no separator or either side is empty after normalization.
func SplitTitle(title string) (head, tail string, ok bool) {
	idx, width := -1, 0
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i >= 0 && (idx < 0 || i < idx) {
			idx, width = i, len(sep)
		}
	}
	if idx < 0 {
		return "", "", false
	}
	head = strings.TrimSpace(title[:idx])
	tail = strings.TrimSpace(strings.Trim(title[idx+width:], "()"))
	if Normalize(head) == "" || Normalize(tail) == "" {
		return "", "", false
	}
	return head, tail, true
}

// DistinctiveTokens extracts the tokens that disambiguate near-duplicate
// titles: the tail after the first separator when present, otherwise every
// word after the first, minus stop words.
func DistinctiveTokens(title string) []string {
	var words []string
	if _, tail, ok := SplitTitle(title); ok {
		words = Tokens(tail)
	} else {
		words = Tokens(title)
		if len(words) > 0 {
			words = words[1:]
		}
	}

	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries
// after both are normalized.
func ContainsPhrase(text, phrase string) bool {
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	return containsNormalized(Normalize(text), p)
}

// ContainsNormalized is ContainsPhrase for inputs that are already normalized.
func ContainsNormalized(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return containsNormalized(text, phrase)
}

func containsNormalized(text, phrase string) bool {
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
