// Package match decides whether a source candidate plausibly denotes the
// same book as a parsed record, and ranks the survivors.
package match

import (
	"sort"
	"strings"

	"librarium/internal/isbn"
	"librarium/internal/sources"
)

// Thresholds carries the empirically tuned acceptance cutoffs. The author
// thresholds are a known tuning risk on transliterated and multi-author
// names, so they stay configurable.
type Thresholds struct {
	Title          float64
	Author         float64
	FallbackTitle  float64
	FallbackAuthor float64
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Title:          0.7,
		Author:         0.5,
		FallbackTitle:  0.95,
		FallbackAuthor: 0.3,
	}
}

// Expected is what the import record claims the book is.
type Expected struct {
	Title  string
	Author string
	ISBN   string
}

// ScoredCandidate is a candidate that survived the rejection filters and
// acceptance rule, with its 0-100 score.
type ScoredCandidate struct {
	sources.Candidate
	Score     float64
	TitleSim  float64
	AuthorSim float64
	ISBNMatch bool
}

// Scorer holds run-scoped matching configuration. Build one per import run
// and pass it around explicitly; there is no package-level mutable state.
type Scorer struct {
	thresholds Thresholds
}

func NewScorer(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// Evaluate applies the rejection filters, acceptance rule, and scoring to
// one candidate. ok is false when the candidate was rejected or failed
// acceptance.
func (s *Scorer) Evaluate(c sources.Candidate, expected Expected) (ScoredCandidate, bool) {
	// Rejection filters come first and are absolute: a study guide stays
	// rejected even at perfect title similarity.
	if IsStudyGuide(c.Title) {
		return ScoredCandidate{}, false
	}
	if c.Description != "" && IsNonEnglish(c.Description) {
		return ScoredCandidate{}, false
	}

	titleSim := Similarity(c.Title, expected.Title)
	authorSim := Similarity(c.Author, expected.Author)
	isbnMatch := hasISBNMatch(c, expected.ISBN)

	if !isbnMatch {
		accepted := titleSim >= s.thresholds.Title &&
			(authorSim >= s.thresholds.Author ||
				(titleSim >= s.thresholds.FallbackTitle && authorSim >= s.thresholds.FallbackAuthor))
		if !accepted {
			return ScoredCandidate{}, false
		}
	}

	scored := ScoredCandidate{
		Candidate: c,
		TitleSim:  titleSim,
		AuthorSim: authorSim,
		ISBNMatch: isbnMatch,
	}
	scored.Score = s.score(scored)
	return scored, true
}

// Best evaluates all candidates from one adapter and returns the top-ranked
// survivor, or ok=false when none survive. Ties go to the earlier candidate.
func (s *Scorer) Best(candidates []sources.Candidate, expected Expected) (ScoredCandidate, bool) {
	var survivors []ScoredCandidate
	for _, c := range candidates {
		if scored, ok := s.Evaluate(c, expected); ok {
			survivors = append(survivors, scored)
		}
	}
	if len(survivors) == 0 {
		return ScoredCandidate{}, false
	}
	Rank(survivors)
	return survivors[0], true
}

// Rank sorts scored candidates descending by score, breaking ties by source
// priority.
func Rank(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return sources.Priority(scored[i].SourceName) < sources.Priority(scored[j].SourceName)
	})
}

func (s *Scorer) score(c ScoredCandidate) float64 {
	score := 0.0
	if c.ISBNMatch {
		score += 50
	}
	score += 30 * c.TitleSim
	score += 20 * c.AuthorSim
	if c.CoverURL != "" {
		score += 5
	}
	if c.Description != "" {
		score += 5
	}
	// Defense in depth: the filters above already discard these, but the
	// penalties keep a bad candidate from winning if the filters ever relax.
	if IsStudyGuide(c.Title) {
		score -= 50
	}
	if c.Description != "" && IsNonEnglish(c.Description) {
		score -= 60
	}
	return score
}

func hasISBNMatch(c sources.Candidate, expected string) bool {
	want := isbn.Normalize(expected)
	if want == "" {
		return false
	}
	if isbn.Normalize(c.ISBN) == want {
		return true
	}
	for _, id := range c.ISBNs {
		if isbn.Normalize(id) == want {
			return true
		}
	}
	return false
}

// Similarity computes a [0,1] string similarity: 1.0 on exact normalized
// match, 0.9 when either contains the other, else the fraction of the
// smaller token set's words found as substrings of the other's tokens.
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	ta, tb := strings.Fields(na), strings.Fields(nb)
	smaller, larger := ta, tb
	if len(tb) < len(ta) {
		smaller, larger = tb, ta
	}

	matched := 0
	for _, w := range smaller {
		for _, t := range larger {
			if strings.Contains(t, w) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(smaller))
}

// normalize lowercases, strips punctuation, and collapses whitespace.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 0x80:
			// Keep non-ASCII letters; authors are not all ASCII.
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
