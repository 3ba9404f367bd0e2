package match

import (
	"testing"

	"librarium/internal/sources"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Atomic Habits", "Atomic Habits", 1.0},
		{"Atomic Habits", "atomic habits!", 1.0},
		{"Atomic Habits", "Atomic Habits: An Easy Way", 0.9},
		{"The Hobbit", "Hobbit", 0.9},
		{"", "anything", 0},
	}

	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	// Token overlap: smaller set fully covered scores 1.0 is reserved for
	// exact matches; partial coverage is fractional.
	got := Similarity("J.K. Rowling", "Rowling, J.K.")
	if got < 0.9 {
		t.Errorf("reordered author similarity = %v, want >= 0.9", got)
	}

	got = Similarity("Frank Herbert", "Brian Herbert")
	if got != 0.5 {
		t.Errorf("half-overlap similarity = %v, want 0.5", got)
	}
}

func expectedBook() Expected {
	return Expected{Title: "Atomic Habits", Author: "James Clear", ISBN: "9780735211292"}
}

func TestEvaluateAcceptsExactISBN(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	// Title and author disagree wildly, but the identifier matches.
	c := sources.Candidate{
		Title:      "Tiny Changes, Remarkable Results",
		Author:     "J. Clear",
		ISBNs:      []string{"978-0735211292"},
		SourceName: sources.SourceGoogleBooks,
	}

	scored, ok := s.Evaluate(c, expectedBook())
	if !ok {
		t.Fatal("exact ISBN match must be accepted regardless of similarity")
	}
	if !scored.ISBNMatch {
		t.Error("ISBNMatch not set")
	}
	if scored.Score < 50 {
		t.Errorf("score = %v, want >= 50", scored.Score)
	}
}

func TestEvaluateRejectsLowSimilarity(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	c := sources.Candidate{
		Title:      "A Completely Different Book",
		Author:     "Somebody Else",
		SourceName: sources.SourceOpenLibrary,
	}

	if _, ok := s.Evaluate(c, expectedBook()); ok {
		t.Error("dissimilar candidate without ISBN must be rejected")
	}
}

// A summary/study-guide title is rejected even at perfect similarity.
func TestEvaluateRejectsStudyGuide(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	c := sources.Candidate{
		Title:      "Atomic Habits: Summary and Analysis",
		Author:     "James Clear",
		ISBNs:      []string{"9780735211292"},
		SourceName: sources.SourceGoogleBooks,
	}

	if _, ok := s.Evaluate(c, expectedBook()); ok {
		t.Error("study guide must be rejected despite high title similarity and ISBN match")
	}
}

func TestEvaluateRejectsNonEnglishDescription(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	c := sources.Candidate{
		Title:       "Atomic Habits",
		Author:      "James Clear",
		Description: "Dieses Buch zeigt, wie der Leser die Gewohnheiten ändert und nicht aufgibt, denn die Methode wird erklärt und nicht vergessen.",
		SourceName:  sources.SourceGoogleBooks,
	}

	if _, ok := s.Evaluate(c, expectedBook()); ok {
		t.Error("non-English description must be rejected")
	}
}

// Adding an exact identifier match to an otherwise identical candidate
// increases the score by exactly 50.
func TestScoreMonotonicOnISBN(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	without := sources.Candidate{
		Title:      "Atomic Habits",
		Author:     "James Clear",
		CoverURL:   "https://example.com/cover.jpg",
		SourceName: sources.SourceHardcover,
	}
	with := without
	with.ISBNs = []string{"9780735211292"}

	a, ok := s.Evaluate(without, expectedBook())
	if !ok {
		t.Fatal("baseline candidate should be accepted")
	}
	b, ok := s.Evaluate(with, expectedBook())
	if !ok {
		t.Fatal("ISBN candidate should be accepted")
	}

	if diff := b.Score - a.Score; diff != 50 {
		t.Errorf("ISBN match added %v to the score, want exactly 50", diff)
	}
}

func TestEvaluateFallbackThreshold(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	expected := Expected{Title: "War and Peace", Author: "Leo Nikolayevich Tolstoy"}

	// Exact title, author overlap of 1/3: below the main author threshold
	// but inside the high-title-similarity fallback.
	c := sources.Candidate{
		Title:      "War and Peace",
		Author:     "Lev Tolstoy Translator",
		SourceName: sources.SourceWorldCat,
	}
	scored, ok := s.Evaluate(c, expected)
	if !ok {
		t.Fatal("fallback rule should accept exact title with weak author overlap")
	}
	if scored.AuthorSim >= s.thresholds.Author {
		t.Fatalf("test premise broken: author similarity %v not below main threshold", scored.AuthorSim)
	}
}

func TestBestPicksHighestScore(t *testing.T) {
	s := NewScorer(DefaultThresholds())

	candidates := []sources.Candidate{
		{Title: "Atomic Habits", Author: "James Clear", SourceName: sources.SourceGoogleBooks},
		{Title: "Atomic Habits", Author: "James Clear", ISBNs: []string{"9780735211292"}, SourceName: sources.SourceGoogleBooks},
	}

	best, ok := s.Best(candidates, expectedBook())
	if !ok {
		t.Fatal("expected a best candidate")
	}
	if !best.ISBNMatch {
		t.Error("candidate with ISBN match should win")
	}
}

func TestRankTieBreaksBySourcePriority(t *testing.T) {
	scored := []ScoredCandidate{
		{Candidate: sources.Candidate{SourceName: sources.SourceOpenLibrary}, Score: 80},
		{Candidate: sources.Candidate{SourceName: sources.SourceHardcover}, Score: 80},
		{Candidate: sources.Candidate{SourceName: sources.SourceWorldCat}, Score: 90},
	}

	Rank(scored)

	if scored[0].SourceName != sources.SourceWorldCat {
		t.Errorf("highest score first, got %s", scored[0].SourceName)
	}
	if scored[1].SourceName != sources.SourceHardcover {
		t.Errorf("tie should break by source priority, got %s", scored[1].SourceName)
	}
}

func TestIsStudyGuide(t *testing.T) {
	for _, title := range []string{
		"Atomic Habits: Summary and Analysis",
		"SparkNotes: The Great Gatsby",
		"Zusammenfassung von Faust",
		"Study Guide for 1984",
	} {
		if !IsStudyGuide(title) {
			t.Errorf("IsStudyGuide(%q) = false", title)
		}
	}

	if IsStudyGuide("A Summer Place") {
		t.Error("'summer' must not trip the 'summary' term")
	}
}
