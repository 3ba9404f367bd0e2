// Package fusion merges the best candidate from each source into one
// consensus record. No single source is authoritative; every field is
// decided by scoring or by frequency across sources.
package fusion

import (
	"sort"
	"strings"

	"librarium/internal/genres"
	"librarium/internal/match"
	"librarium/internal/sources"
)

// MinDescriptionLength is the eligibility floor for fused descriptions.
const MinDescriptionLength = 50

// EnrichedResult is the fused output merged into the persisted book.
type EnrichedResult struct {
	CoverURL      string
	Description   string
	Genre         string // up to GenreMax normalized tags, comma-joined
	Publisher     string
	PublishedDate string
	PageCount     int
}

// Engine holds run-scoped fusion configuration.
type Engine struct {
	GenreMax int
}

func NewEngine(genreMax int) *Engine {
	if genreMax <= 0 {
		genreMax = genres.DefaultMaxTags
	}
	return &Engine{GenreMax: genreMax}
}

// Fuse merges the per-source winners into one record. The input map is
// keyed by source name; sources absent from the map contributed nothing.
func (e *Engine) Fuse(winners map[string]match.ScoredCandidate) EnrichedResult {
	ordered := orderBySourcePriority(winners)

	var result EnrichedResult
	result.CoverURL = bestCover(ordered)
	result.Description = bestDescription(ordered)
	result.Genre = fuseGenres(ordered, e.GenreMax)
	result.Publisher = consensusString(ordered, func(c match.ScoredCandidate) string { return c.Publisher })
	result.PublishedDate = consensusString(ordered, func(c match.ScoredCandidate) string { return c.PublishedDate })
	result.PageCount = consensusPageCount(ordered)
	return result
}

// Confidence returns the fraction of contributing sources whose title and
// author similarity both clear the given threshold. Values below 0.5 are
// worth logging; they never block an import.
func (e *Engine) Confidence(winners map[string]match.ScoredCandidate, threshold float64) float64 {
	if len(winners) == 0 {
		return 0
	}
	agree := 0
	for _, c := range winners {
		if c.TitleSim >= threshold && c.AuthorSim >= threshold {
			agree++
		}
	}
	return float64(agree) / float64(len(winners))
}

func orderBySourcePriority(winners map[string]match.ScoredCandidate) []match.ScoredCandidate {
	ordered := make([]match.ScoredCandidate, 0, len(winners))
	for _, c := range winners {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return sources.Priority(ordered[i].SourceName) < sources.Priority(ordered[j].SourceName)
	})
	return ordered
}

// placeholderMarkers identify "no cover available" images some sources
// return instead of nothing.
var placeholderMarkers = []string{
	"nophoto",
	"no-cover",
	"nocover",
	"image_not_available",
	"placeholder",
}

// CoverScore rates one cover URL: source reliability, https, and size hints.
func CoverScore(coverURL, sourceName string) int {
	if coverURL == "" {
		return -1000
	}

	score := sources.ReliabilityWeight(sourceName)

	u := strings.ToLower(coverURL)
	if strings.HasPrefix(u, "https://") {
		score += 10
	}
	if strings.Contains(u, "-l.jpg") || strings.Contains(u, "large") || strings.Contains(u, "zoom=1") {
		score += 15
	}
	if strings.Contains(u, "thumb") || strings.Contains(u, "-s.jpg") || strings.Contains(u, "small") {
		score -= 5
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(u, marker) {
			score -= 500
		}
	}
	return score
}

func bestCover(ordered []match.ScoredCandidate) string {
	best := ""
	bestScore := 0
	for _, c := range ordered {
		if c.CoverURL == "" {
			continue
		}
		if s := CoverScore(c.CoverURL, c.SourceName); best == "" || s > bestScore {
			best = c.CoverURL
			bestScore = s
		}
	}
	return best
}

// DescriptionScore rates one description: a 200-1000 character sweet spot
// scores highest, with source reliability as tie-breaker weight. Non-English
// text is effectively disqualified.
func DescriptionScore(description, sourceName string) int {
	n := len(description)
	if n < MinDescriptionLength {
		return -1000
	}

	score := sources.ReliabilityWeight(sourceName)
	switch {
	case n >= 200 && n <= 1000:
		score += 50
	case n > 1000 && n <= 2500:
		score += 30
	case n >= 100:
		score += 20
	default:
		score += 5
	}

	if match.IsNonEnglish(description) {
		score -= 100
	}
	return score
}

func bestDescription(ordered []match.ScoredCandidate) string {
	best := ""
	bestScore := 0
	for _, c := range ordered {
		if len(c.Description) < MinDescriptionLength {
			continue
		}
		if s := DescriptionScore(c.Description, c.SourceName); best == "" || s > bestScore {
			best = c.Description
			bestScore = s
		}
	}
	return best
}

func fuseGenres(ordered []match.ScoredCandidate, max int) string {
	raw := make([]string, 0, len(ordered))
	for _, c := range ordered {
		if c.GenreRaw != "" {
			raw = append(raw, c.GenreRaw)
		}
	}
	return genres.Merge(raw, max)
}

// consensusString picks the most frequent normalized value, breaking ties by
// first appearance, and returns its first-seen casing.
func consensusString(ordered []match.ScoredCandidate, field func(match.ScoredCandidate) string) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]string)
	var keys []string

	for _, c := range ordered {
		v := strings.TrimSpace(field(c))
		if v == "" {
			continue
		}
		key := normalizeValue(v)
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = v
			keys = append(keys, key)
		}
		counts[key]++
	}

	bestKey := ""
	for _, key := range keys {
		if bestKey == "" || counts[key] > counts[bestKey] {
			bestKey = key
		}
	}
	return firstSeen[bestKey]
}

// normalizeValue folds publisher/date variants together so "Penguin" and
// "Penguin Books" count as the same vote.
func normalizeValue(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, suffix := range []string{" books", " press", " publishing", " publishers", " publications", " inc", " llc", " ltd"} {
		v = strings.TrimSuffix(v, suffix)
	}
	return strings.TrimSpace(v)
}

// consensusPageCount takes the median when at least two sources agree
// closely, else the single reported value.
func consensusPageCount(ordered []match.ScoredCandidate) int {
	var counts []int
	for _, c := range ordered {
		if c.PageCount > 0 {
			counts = append(counts, c.PageCount)
		}
	}

	switch len(counts) {
	case 0:
		return 0
	case 1:
		return counts[0]
	}

	// With two or more numeric sources the median absorbs outliers; page
	// counts differ across editions, so exact agreement is rare.
	sort.Ints(counts)
	return counts[len(counts)/2]
}
