package importer

import (
	"context"

	"librarium/internal/goodreads"
)

// Runner builds a coordinator per run, since mode and batching are chosen
// by the caller on every request.
type Runner struct {
	store    BookStore
	enricher Enricher
}

func NewRunner(store BookStore, enricher Enricher) *Runner {
	return &Runner{store: store, enricher: enricher}
}

func (r *Runner) Run(ctx context.Context, userID uint, books []goodreads.ParsedBook, opts Options, events chan<- Event) Result {
	return NewCoordinator(r.store, r.enricher, opts).Run(ctx, userID, books, events)
}
