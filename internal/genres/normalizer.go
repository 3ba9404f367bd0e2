// Package genres maps free-text category strings from bibliographic sources
// into a closed canonical taxonomy.
package genres

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultMaxTags caps how many normalized genres a fused record keeps.
const DefaultMaxTags = 3

// canonical maps lowercase lookup keys to their canonical genre. Several keys
// alias to one genre; keys must stay lowercase.
var canonical = map[string]string{
	"fiction":                   "Fiction",
	"literary fiction":          "Fiction",
	"general fiction":           "Fiction",
	"nonfiction":                "Nonfiction",
	"non-fiction":               "Nonfiction",
	"fantasy":                   "Fantasy",
	"epic fantasy":              "Fantasy",
	"science fiction":           "Science Fiction",
	"science-fiction":           "Science Fiction",
	"sci-fi":                    "Science Fiction",
	"scifi":                     "Science Fiction",
	"mystery":                   "Mystery",
	"detective":                 "Mystery",
	"mystery & detective":       "Mystery",
	"thriller":                  "Thriller",
	"suspense":                  "Thriller",
	"horror":                    "Horror",
	"romance":                   "Romance",
	"historical fiction":        "Historical Fiction",
	"biography":                 "Biography",
	"autobiography":             "Biography",
	"biography & autobiography": "Biography",
	"memoir":                    "Memoir",
	"history":                   "History",
	"science":                   "Science",
	"popular science":           "Science",
	"philosophy":                "Philosophy",
	"psychology":                "Psychology",
	"self-help":                 "Self-Help",
	"self help":                 "Self-Help",
	"self-improvement":          "Self-Help",
	"personal development":      "Self-Help",
	"business":                  "Business",
	"economics":                 "Economics",
	"poetry":                    "Poetry",
	"young adult":               "Young Adult",
	"young adult fiction":       "Young Adult",
	"children's":                "Children's",
	"childrens":                 "Children's",
	"juvenile fiction":          "Children's",
	"juvenile":                  "Children's",
	"classics":                  "Classics",
	"classic literature":        "Classics",
	"adventure":                 "Adventure",
	"crime":                     "Crime",
	"true crime":                "True Crime",
	"humor":                     "Humor",
	"humour":                    "Humor",
	"comedy":                    "Humor",
	"travel":                    "Travel",
	"religion":                  "Religion",
	"spirituality":              "Religion",
	"politics":                  "Politics",
	"political science":         "Politics",
	"graphic novel":             "Graphic Novel",
	"comics":                    "Graphic Novel",
	"comics & graphic novels":   "Graphic Novel",
}

// ignored rejects overly specific or non-genre strings before lookup:
// decades, audience markers, shelf noise, and place names that sources
// sometimes report as subjects.
var ignored = map[string]struct{}{
	"general":          {},
	"miscellaneous":    {},
	"other":            {},
	"books":            {},
	"ebooks":           {},
	"audiobook":        {},
	"large print":      {},
	"19th century":     {},
	"20th century":     {},
	"21st century":     {},
	"united states":    {},
	"america":          {},
	"england":          {},
	"great britain":    {},
	"new york":         {},
	"accessible book":  {},
	"protected daisy":  {},
	"in library":       {},
	"overdrive":        {},
	"reading level":    {},
	"staff picks":      {},
	"nyt:bestsellers":  {},
	"award:hugo_award": {},
}

// lookupKeys holds canonical's keys sorted longest-first for deterministic
// substring matching.
var lookupKeys = func() []string {
	keys := make([]string, 0, len(canonical))
	for k := range canonical {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Normalize maps one free-text category to a canonical genre. The second
// return value is false when the string was discarded.
func Normalize(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}

	if _, skip := ignored[key]; skip {
		return "", false
	}
	// Two-letter codes (language and state abbreviations) are never genres.
	if len(key) == 2 {
		return "", false
	}
	if isDecade(key) {
		return "", false
	}

	if g, ok := canonical[key]; ok {
		return g, true
	}

	// Hierarchical strings ("Fiction / Fantasy / Epic") are tried segment by
	// segment, most specific first.
	if segments := splitHierarchy(key); len(segments) > 1 {
		for i := len(segments) - 1; i >= 0; i-- {
			if g, ok := canonical[segments[i]]; ok {
				return g, true
			}
		}
	}

	// Substring containment against longer lookup keys catches decorated
	// forms like "epic fantasy adventure". Longest key wins so "historical
	// fiction mysteries" maps to Historical Fiction, not Fiction.
	for _, lookup := range lookupKeys {
		if len(lookup) > 3 && strings.Contains(key, lookup) {
			return canonical[lookup], true
		}
	}

	// Short, plain strings pass through title-cased so niche but real genres
	// survive. Anything long, parenthesized, or deeply nested is discarded.
	if len(key) <= 24 && !strings.ContainsAny(key, "()") && len(strings.Fields(key)) <= 2 {
		return titleCase(key), true
	}

	return "", false
}

// NormalizeList normalizes a comma-joined multi-genre string, deduplicates,
// and caps the result at max entries in order of first appearance.
func NormalizeList(raw string, max int) string {
	if max <= 0 {
		max = DefaultMaxTags
	}

	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(raw, ",") {
		g, ok := Normalize(part)
		if !ok {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
		if len(out) == max {
			break
		}
	}
	return strings.Join(out, ", ")
}

// Merge folds multiple raw category lists into one capped, deduplicated,
// comma-joined genre string, preserving first-appearance order.
func Merge(rawLists []string, max int) string {
	if max <= 0 {
		max = DefaultMaxTags
	}

	seen := make(map[string]struct{})
	var out []string
	for _, raw := range rawLists {
		for _, part := range strings.Split(raw, ",") {
			g, ok := Normalize(part)
			if !ok {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			out = append(out, g)
			if len(out) == max {
				return strings.Join(out, ", ")
			}
		}
	}
	return strings.Join(out, ", ")
}

func splitHierarchy(key string) []string {
	f := func(r rune) bool { return r == '/' || r == ',' }
	parts := strings.FieldsFunc(key, f)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isDecade(key string) bool {
	if len(key) != 5 || !strings.HasSuffix(key, "s") {
		return false
	}
	for _, r := range key[:4] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(prev) || prev == '-' {
			prev = r
			return unicode.ToUpper(r)
		}
		prev = r
		return r
	}, s)
}
