package genres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"exact match", "fantasy", "Fantasy", true},
		{"exact match cased", "Science Fiction", "Science Fiction", true},
		{"alias", "sci-fi", "Science Fiction", true},
		{"hierarchy picks most specific", "Fiction / Fantasy / Epic", "Fantasy", true},
		{"hierarchy falls back to general", "Fiction / Unheard Of Subcategory That Is Long", "Fiction", true},
		{"substring containment", "epic fantasy adventure", "Fantasy", true},
		{"longest substring wins", "historical fiction mysteries", "Historical Fiction", true},
		{"short passthrough title-cased", "steampunk", "Steampunk", true},
		{"two word passthrough", "urban fantasy", "Fantasy", true},
		{"ignored shelf noise", "general", "", false},
		{"two-letter code", "en", "", false},
		{"decade", "1990s", "", false},
		{"place name", "united states", "", false},
		{"parenthesized discarded", "awards (nominated)", "", false},
		{"long unknown discarded", "a very long and oddly specific category name", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Normalizing an already-canonical genre must return it unchanged.
func TestNormalizeIdempotent(t *testing.T) {
	seen := make(map[string]struct{})
	for _, g := range canonical {
		seen[g] = struct{}{}
	}

	for g := range seen {
		got, ok := Normalize(g)
		if !ok || got != g {
			t.Errorf("Normalize(%q) = (%q, %v), want (%q, true)", g, got, ok, g)
		}
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList("Fantasy, sci-fi, fantasy, Mystery, Horror", 3)
	assert.Equal(t, "Fantasy, Science Fiction, Mystery", got)

	got = NormalizeList("general, 1990s, thriller", 3)
	assert.Equal(t, "Thriller", got)

	assert.Equal(t, "", NormalizeList("", 3))
}

func TestMerge(t *testing.T) {
	got := Merge([]string{
		"Fiction / Fantasy",
		"Epic Fantasy, Adventure",
		"Juvenile Fiction",
		"Horror",
	}, 3)
	assert.Equal(t, "Fantasy, Adventure, Children's", got)
}
