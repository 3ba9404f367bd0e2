package importer

import (
	"context"
	"log"
	"sync"
	"time"

	"librarium/internal/entities"
	"librarium/internal/goodreads"
	"librarium/internal/match"
)

// Mode selects how much work the import does per record.
type Mode string

const (
	// ModeFull enriches every record against the metadata sources.
	ModeFull Mode = "full"
	// ModeHardcoverOnly takes the community-graph source's best candidate
	// alone, skipping cross-validation against the other sources.
	ModeHardcoverOnly Mode = "hardcover"
	// ModeFast persists records with no source calls at all. Records are
	// flagged so the background queue enriches them later.
	ModeFast Mode = "fast"
)

// PlaceholderDescription marks books imported without a metadata match.
const PlaceholderDescription = "No description available yet."

// Options configures one import run.
type Options struct {
	Mode           Mode
	SkipDuplicates bool
	BatchSize      int           // Records processed concurrently per group
	GroupDelay     time.Duration // Pause between groups
}

// EventType discriminates the progress stream.
type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one line of the progress stream sent to the client.
type Event struct {
	Type        EventType `json:"type"`
	Current     int       `json:"current,omitempty"`
	Total       int       `json:"total,omitempty"`
	CurrentBook string    `json:"currentBook,omitempty"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	Result      *Result   `json:"result,omitempty"`
}

// FlaggedBook is one needs-verification entry of a Result, carrying enough
// for a review UI to list the book without another lookup.
type FlaggedBook struct {
	BookID uint   `json:"bookId"`
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
	Reason string `json:"reason"`
}

// Result aggregates one import run.
type Result struct {
	TotalProcessed     int                  `json:"totalProcessed"`
	Imported           int                  `json:"imported"`
	Skipped            int                  `json:"skipped"`
	Failed             int                  `json:"failed"`
	Errors             []goodreads.RowError `json:"errors"`
	CollectionsCreated []string             `json:"collectionsCreated"`
	NeedsVerification  []FlaggedBook        `json:"needsVerification"`
}

// BookStore is the persistence the coordinator needs. Each create runs in
// its own transaction so one bad record never poisons the batch.
type BookStore interface {
	ListByUser(userID uint) ([]entities.Book, error)
	CreateWithCollections(book *entities.Book, shelves []string) (collectionsCreated []string, err error)
}

// Coordinator drives an import: duplicate detection, grouped concurrent
// enrichment, and per-record persistence.
type Coordinator struct {
	store    BookStore
	enricher Enricher
	opts     Options
}

func NewCoordinator(store BookStore, enricher Enricher, opts Options) *Coordinator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	return &Coordinator{store: store, enricher: enricher, opts: opts}
}

// Run imports the parsed records for one user. Progress events go to the
// channel when one is given; Run closes it before returning. The returned
// Result is complete even when the context is cancelled midway.
func (c *Coordinator) Run(ctx context.Context, userID uint, books []goodreads.ParsedBook, events chan<- Event) Result {
	if events != nil {
		defer close(events)
	}

	result := Result{}

	existing, err := c.store.ListByUser(userID)
	if err != nil {
		rowErr := goodreads.RowError{Error: "loading existing library: " + err.Error()}
		result.Errors = append(result.Errors, rowErr)
		c.emit(ctx, events, Event{Type: EventError, Error: rowErr.Error})
		return result
	}
	detector := NewDetector(existing)

	total := len(books)
	for start := 0; start < total; start += c.opts.BatchSize {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, goodreads.RowError{Error: "import cancelled"})
			break
		}

		end := start + c.opts.BatchSize
		if end > total {
			end = total
		}
		c.processGroup(ctx, userID, books[start:end], start, total, detector, &result, events)

		// Pacing between groups keeps the sources from rate limiting us.
		if end < total && c.opts.GroupDelay > 0 {
			select {
			case <-time.After(c.opts.GroupDelay):
			case <-ctx.Done():
			}
		}
	}

	c.emit(ctx, events, Event{Type: EventComplete, Current: result.TotalProcessed, Total: total, Result: &result})
	return result
}

// processGroup filters duplicates, enriches the survivors concurrently, then
// persists them one transaction at a time.
func (c *Coordinator) processGroup(ctx context.Context, userID uint, group []goodreads.ParsedBook, offset, total int, detector *Detector, result *Result, events chan<- Event) {
	type workItem struct {
		row     int // 1-based data row in the export
		book    goodreads.ParsedBook
		outcome EnrichOutcome
	}

	var work []*workItem
	for i, book := range group {
		row := offset + i + 1
		if c.opts.SkipDuplicates && detector.IsDuplicate(book) {
			result.TotalProcessed++
			result.Skipped++
			c.emit(ctx, events, Event{
				Type: EventProgress, Current: result.TotalProcessed, Total: total,
				CurrentBook: book.Title, Message: "skipped duplicate",
			})
			continue
		}
		// Registered now, before persistence, so a record appearing twice
		// inside the same file is caught even within one group.
		detector.Remember(book)
		work = append(work, &workItem{row: row, book: book})
	}

	if c.opts.Mode != ModeFast && c.enricher != nil {
		enrich := c.enricher.Enrich
		if c.opts.Mode == ModeHardcoverOnly {
			enrich = c.enricher.EnrichPrimaryOnly
		}
		var wg sync.WaitGroup
		for _, item := range work {
			wg.Add(1)
			go func(item *workItem) {
				defer wg.Done()
				item.outcome = enrich(ctx, match.Expected{
					Title:  item.book.Title,
					Author: item.book.Author,
					ISBN:   item.book.ISBN,
				})
			}(item)
		}
		wg.Wait()
	}

	for _, item := range work {
		result.TotalProcessed++

		book := c.buildBook(userID, item.book, item.outcome)
		created, err := c.store.CreateWithCollections(&book, item.book.Shelves)
		if err != nil {
			result.Failed++
			rowErr := goodreads.RowError{Row: item.row, Book: item.book.Title, Error: err.Error()}
			result.Errors = append(result.Errors, rowErr)
			log.Printf("[importer] %s", rowErr)
			c.emit(ctx, events, Event{Type: EventError, Current: result.TotalProcessed, Total: total, CurrentBook: item.book.Title, Error: rowErr.String()})
			continue
		}

		result.Imported++
		result.CollectionsCreated = append(result.CollectionsCreated, created...)
		if book.NeedsVerification {
			result.NeedsVerification = append(result.NeedsVerification, FlaggedBook{
				BookID: book.ID,
				Title:  book.Title,
				Author: book.Author,
				ISBN:   book.ISBN,
				Reason: book.VerifyReason,
			})
		}

		c.emit(ctx, events, Event{Type: EventProgress, Current: result.TotalProcessed, Total: total, CurrentBook: item.book.Title})
	}
}

// buildBook merges the parsed record with the enrichment outcome. The export
// is authoritative for reading state; the sources are authoritative for
// presentation metadata when they produced a match.
func (c *Coordinator) buildBook(userID uint, parsed goodreads.ParsedBook, outcome EnrichOutcome) entities.Book {
	book := entities.Book{
		UserID:        userID,
		Title:         parsed.Title,
		Author:        parsed.Author,
		ISBN:          parsed.ISBN,
		ExternalID:    parsed.ExternalID,
		Publisher:     parsed.Publisher,
		PageCount:     parsed.TotalPages,
		Rating:        parsed.Rating,
		Review:        parsed.Review,
		ReadingStatus: parsed.ReadingStatus,
		DateAdded:     parsed.DateAdded,
		DateFinished:  parsed.DateFinished,
	}

	if c.opts.Mode == ModeFast {
		// No sources were consulted; hand the record to the background queue.
		book.Description = PlaceholderDescription
		book.NeedsVerification = true
		book.VerifyReason = "enrichment deferred"
		return book
	}

	if !outcome.Matched {
		// Import anyway; a later re-enrichment pass may do better.
		book.Description = PlaceholderDescription
		book.NeedsVerification = true
		book.VerifyReason = "no metadata match"
		return book
	}

	enriched := outcome.Result
	book.CoverURL = enriched.CoverURL
	book.Genre = enriched.Genre
	if enriched.Description != "" {
		book.Description = enriched.Description
	} else {
		book.Description = PlaceholderDescription
		book.NeedsVerification = true
		book.VerifyReason = "no usable description"
	}
	if enriched.Publisher != "" {
		book.Publisher = enriched.Publisher
	}
	if enriched.PublishedDate != "" {
		book.PublishedDate = enriched.PublishedDate
	}
	if enriched.PageCount > 0 {
		book.PageCount = enriched.PageCount
	}
	if outcome.Confidence < 0.5 && !book.NeedsVerification {
		book.NeedsVerification = true
		book.VerifyReason = "low enrichment confidence"
	}
	return book
}

// emit sends an event without wedging on a cancelled client.
func (c *Coordinator) emit(ctx context.Context, events chan<- Event, e Event) {
	if events == nil {
		return
	}
	select {
	case events <- e:
	case <-ctx.Done():
	}
}
