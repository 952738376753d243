package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"soundmatch/internal/textutil"
)

var acronymPrefix = regexp.MustCompile(`^([A-Z0-9]{2,6})\s+(\S.*)$`)

// bareReplacer strips characters the catalog treats as query syntax.
var bareReplacer = strings.NewReplacer(`"`, " ", ":", " ", "(", " ", ")", " ")

// TitleForms expands a query into the title strings worth searching: the
// title itself, an "ACR: rest" form for run-together acronyms, the head
// before a separator, and every alternate title.
func TitleForms(q Query) []string {
	title := strings.TrimSpace(q.Title)
	if title == "" {
		return nil
	}
	forms := []string{title}
	if !strings.Contains(title, ":") {
		if m := acronymPrefix.FindStringSubmatch(title); m != nil && strings.ContainsFunc(m[1], isUpperLetter) {
			forms = append(forms, m[1]+": "+m[2])
		}
	}
	if head, _, ok := textutil.SplitTitle(title); ok {
		forms = append(forms, head)
	}
	for _, alt := range q.AltTitles {
		if alt = strings.TrimSpace(alt); alt != "" {
			forms = append(forms, alt)
		}
	}

	seen := make(map[string]struct{}, len(forms))
	out := forms[:0]
	for _, f := range forms {
		key := strings.ToLower(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

func isUpperLetter(r rune) bool { return r >= 'A' && r <= 'Z' }

// Plan generates the ordered, deduplicated query variants for q. A non-blank
// title always yields at least its tier 2 bare form.
func Plan(q Query, spec PlanSpec, scopes []string) []QueryVariant {
	forms := TitleForms(q)
	if len(forms) == 0 {
		return nil
	}
	if len(scopes) == 0 {
		scopes = []string{""}
	}

	hints := planHints(q, spec.MaxHints)
	exclusions := exclusionClause(spec.ExcludeTerms)

	var texts []struct {
		text string
		tier int
	}
	add := func(tier int, text string) {
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			return
		}
		texts = append(texts, struct {
			text string
			tier int
		}{text, tier})
	}

	for _, form := range forms {
		exact := qualified(spec.Field, form)
		add(0, exact+exclusions)
		for _, hint := range hints {
			add(0, exact+" "+qualified(spec.HintField, hint)+exclusions)
		}
	}

	if terms := spec.domainTerms(q.MediaKind); len(terms) > 0 {
		group := orGroup(terms)
		year := ""
		if q.MediaKind != MediaSeries && q.Year > 0 && spec.YearWindow >= 0 {
			year = fmt.Sprintf(" year:%d-%d", q.Year-spec.YearWindow, q.Year+spec.YearWindow)
		}
		for _, form := range forms {
			add(1, bare(form)+" "+group+year+exclusions)
		}
	}

	for _, form := range forms {
		add(2, bare(form))
	}

	type key struct{ text, scope string }
	seen := make(map[key]struct{}, len(texts)*len(scopes))
	variants := make([]QueryVariant, 0, len(texts)*len(scopes))
	for _, t := range texts {
		for _, scope := range scopes {
			k := key{t.text, scope}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			variants = append(variants, QueryVariant{Text: t.text, Tier: t.tier, Scope: scope})
		}
	}
	return variants
}

func planHints(q Query, limit int) []string {
	if limit <= 0 {
		return nil
	}
	source := q.HintTerms
	if len(source) == 0 {
		source = q.Context
	}
	hints := make([]string, 0, limit)
	for _, h := range source {
		if h = strings.TrimSpace(h); h == "" {
			continue
		}
		hints = append(hints, h)
		if len(hints) == limit {
			break
		}
	}
	return hints
}

func qualified(field, value string) string {
	value = strings.ReplaceAll(value, `"`, "")
	if field == "" {
		return `"` + value + `"`
	}
	return field + `:"` + value + `"`
}

func bare(title string) string {
	return strings.Join(strings.Fields(bareReplacer.Replace(title)), " ")
}

func orGroup(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.Contains(t, " ") {
			parts = append(parts, `"`+t+`"`)
		} else {
			parts = append(parts, t)
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

func exclusionClause(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range terms {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		b.WriteString(" NOT ")
		if strings.Contains(t, " ") {
			b.WriteString(`"` + t + `"`)
		} else {
			b.WriteString(t)
		}
	}
	return b.String()
}
