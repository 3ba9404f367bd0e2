package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"librarium/internal/entities"
	"librarium/internal/fusion"
	"librarium/internal/importer"
	"librarium/internal/match"
)

// Enricher is the slice of the import enricher the processor needs. Re-runs
// always cross-validate, so the full fan-out is the only method here.
type Enricher interface {
	Enrich(ctx context.Context, expected match.Expected) importer.EnrichOutcome
}

// ReenrichBookTask retries enrichment for one book that was imported with a
// placeholder or a low-confidence match.
type ReenrichBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for re-enrichment tasks. Source
// calls are slow, so attempts are spaced well apart.
func (t ReenrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reenrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BookStore is the slice of the books repository the processor needs.
type BookStore interface {
	GetByID(id uint) (*entities.Book, error)
	UpdateEnrichment(bookID uint, coverURL, description, genre, publisher, publishedDate string, pageCount int) error
}

// ReenrichBookProcessor creates the processor for ReenrichBookTask.
func ReenrichBookProcessor(books BookStore, enricher Enricher) backlite.QueueProcessor[ReenrichBookTask] {
	return func(ctx context.Context, task ReenrichBookTask) error {
		book, err := books.GetByID(task.BookID)
		if err != nil {
			return fmt.Errorf("load book %d: %w", task.BookID, err)
		}
		if !book.NeedsVerification {
			log.Printf("[TASK] Book %d (%s) no longer flagged, skipping", book.ID, book.Title)
			return nil
		}

		outcome := enricher.Enrich(ctx, match.Expected{
			Title:  book.Title,
			Author: book.Author,
			ISBN:   book.ISBN,
		})
		if !outcome.Matched || len(outcome.Result.Description) < fusion.MinDescriptionLength {
			// Leave the flag set; the next sweep tries again.
			log.Printf("[TASK] Book %d (%s): still no usable match", book.ID, book.Title)
			return nil
		}

		enriched := outcome.Result
		if err := books.UpdateEnrichment(book.ID, enriched.CoverURL, enriched.Description, enriched.Genre,
			enriched.Publisher, enriched.PublishedDate, enriched.PageCount); err != nil {
			return fmt.Errorf("update book %d: %w", book.ID, err)
		}

		log.Printf("[TASK] Re-enriched book %d (%s) from %d sources (confidence %.2f)",
			book.ID, book.Title, outcome.Sources, outcome.Confidence)
		return nil
	}
}

// NewReenrichBookQueue creates the backlite queue for re-enrichment tasks.
func NewReenrichBookQueue(books BookStore, enricher Enricher) backlite.Queue {
	return backlite.NewQueue(ReenrichBookProcessor(books, enricher))
}

// EnqueueReenrich queues one book for re-enrichment.
func (c *Client) EnqueueReenrich(bookID uint) error {
	_, err := c.Add(ReenrichBookTask{BookID: bookID}).Save()
	return err
}
