// Package sources wraps the external bibliographic APIs behind a uniform
// candidate-fetching contract. Each client owns its response shapes; raw
// source JSON never leaves this package.
package sources

import (
	"context"
	"time"
)

// Source names, in consensus priority order. Lower priority value wins ties.
const (
	SourceHardcover   = "hardcover"   // community book-metadata graph
	SourceGoogleBooks = "googlebooks" // general-purpose book search
	SourceWorldCat    = "worldcat"    // union catalog
	SourceOpenLibrary = "openlibrary" // library catalog
)

// Priority returns the tie-break rank of a source; lower is more trusted.
func Priority(sourceName string) int {
	switch sourceName {
	case SourceHardcover:
		return 0
	case SourceGoogleBooks:
		return 1
	case SourceWorldCat:
		return 2
	case SourceOpenLibrary:
		return 3
	default:
		return 4
	}
}

// ReliabilityWeight returns the per-source weight used when scoring covers
// and descriptions during fusion.
func ReliabilityWeight(sourceName string) int {
	switch sourceName {
	case SourceHardcover:
		return 40
	case SourceWorldCat:
		return 30
	case SourceOpenLibrary:
		return 20
	case SourceGoogleBooks:
		return 10
	default:
		return 0
	}
}

// Candidate is one source's raw hit for a book being enriched, already
// translated out of the source-specific JSON shape.
type Candidate struct {
	Title         string
	Author        string
	ISBN          string
	ISBNs         []string // every identifier the source reported
	CoverURL      string
	Description   string
	GenreRaw      string
	Publisher     string
	PublishedDate string
	PageCount     int
	SourceName    string
}

// Adapter fetches candidate records for a book from one external source.
// A nil/empty result with a nil error means the source simply has nothing;
// an error means the source could not be reached and the caller should treat
// the adapter as having produced no candidates.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, isbn, title, author string) ([]Candidate, error)
}

// ClientConfig carries the retry/backoff knobs shared by all clients.
type ClientConfig struct {
	MaxRetries  int
	BackoffBase time.Duration
	CallTimeout time.Duration
}

// DefaultClientConfig mirrors the production defaults: 3 retries on top of
// the initial attempt, 800ms base backoff growing 1.5x per attempt, and a
// 10 second ceiling per call.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxRetries:  3,
		BackoffBase: 800 * time.Millisecond,
		CallTimeout: 10 * time.Second,
	}
}
