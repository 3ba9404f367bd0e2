package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"librarium/internal/entities"
	"librarium/internal/goodreads"
)

func TestDetectorMatchesByExternalID(t *testing.T) {
	d := NewDetector([]entities.Book{{ExternalID: "12345", Title: "Old Title", Author: "Old Author"}})

	assert.True(t, d.IsDuplicate(goodreads.ParsedBook{ExternalID: "12345", Title: "New Title", Author: "New Author"}))
	assert.False(t, d.IsDuplicate(goodreads.ParsedBook{ExternalID: "99999", Title: "New Title", Author: "New Author"}))
}

// A 10-digit export row must collide with an existing 13-digit record.
func TestDetectorMatchesAcrossISBNForms(t *testing.T) {
	d := NewDetector([]entities.Book{{ISBN: "9780735211292", Title: "A", Author: "B"}})

	assert.True(t, d.IsDuplicate(goodreads.ParsedBook{ISBN: "0735211299", Title: "C", Author: "D"}))
}

func TestDetectorMatchesByTitleAuthorCaseInsensitive(t *testing.T) {
	d := NewDetector([]entities.Book{{Title: "Atomic Habits", Author: "James Clear"}})

	assert.True(t, d.IsDuplicate(goodreads.ParsedBook{Title: "ATOMIC HABITS", Author: "james clear"}))
	assert.False(t, d.IsDuplicate(goodreads.ParsedBook{Title: "Atomic Habits", Author: "Someone Else"}))
}

func TestDetectorRemember(t *testing.T) {
	d := NewDetector(nil)
	record := goodreads.ParsedBook{ExternalID: "1", Title: "Dune", Author: "Frank Herbert"}

	assert.False(t, d.IsDuplicate(record))
	d.Remember(record)
	assert.True(t, d.IsDuplicate(record))
}
