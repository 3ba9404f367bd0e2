// Package scheduler runs the periodic re-verification sweep that retries
// enrichment for books imported with placeholders.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"librarium/internal/entities"
)

// sweepLimit bounds one sweep so a large backlog drains over several runs
// instead of hammering the sources in one night.
const sweepLimit = 100

// FlaggedLister finds books still awaiting verification. A zero userID
// means all users.
type FlaggedLister interface {
	FindFlagged(userID uint, limit int) ([]entities.Book, error)
}

// TaskQueue enqueues background re-enrichment work.
type TaskQueue interface {
	EnqueueReenrich(bookID uint) error
}

// ReverifySweep schedules a periodic pass over flagged books.
type ReverifySweep struct {
	books    FlaggedLister
	queue    TaskQueue
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewReverifySweep creates a sweep on the given cron schedule
// (standard five-field format).
func NewReverifySweep(books FlaggedLister, queue TaskQueue, schedule string) *ReverifySweep {
	return &ReverifySweep{
		books:    books,
		queue:    queue,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *ReverifySweep) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule re-verification sweep '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Re-verification sweep: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *ReverifySweep) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Re-verification sweep: stopped")
}

// RunNow triggers an immediate sweep.
func (s *ReverifySweep) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *ReverifySweep) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will occur.
func (s *ReverifySweep) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep enqueues a re-enrichment task for every flagged book, up to the
// sweep limit.
func (s *ReverifySweep) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Re-verification sweep: skipped (already running)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	flagged, err := s.books.FindFlagged(0, sweepLimit)
	if err != nil {
		log.Printf("Re-verification sweep: failed to list flagged books: %v", err)
		return
	}
	if len(flagged) == 0 {
		log.Printf("Re-verification sweep: nothing to do")
		return
	}

	queued := 0
	for _, book := range flagged {
		if err := s.queue.EnqueueReenrich(book.ID); err != nil {
			log.Printf("Re-verification sweep: failed to queue book %d (%s): %v", book.ID, book.Title, err)
			continue
		}
		queued++
	}
	log.Printf("Re-verification sweep: queued %d of %d flagged books", queued, len(flagged))
}
