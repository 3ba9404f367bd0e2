package importer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"librarium/internal/fusion"
	"librarium/internal/match"
	"librarium/internal/sources"
)

type fakeAdapter struct {
	name       string
	candidates []sources.Candidate
	err        error
	calls      atomic.Int32
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Fetch(ctx context.Context, isbn, title, author string) ([]sources.Candidate, error) {
	a.calls.Add(1)
	return a.candidates, a.err
}

func candidateFor(source string, complete bool) sources.Candidate {
	c := sources.Candidate{
		Title:      "Atomic Habits",
		Author:     "James Clear",
		SourceName: source,
	}
	if complete {
		c.CoverURL = "https://example.com/cover.jpg"
		c.Description = "An unusually practical book about building systems instead of chasing goals."
	}
	return c
}

func newTestEnricher(adapters ...sources.Adapter) *SourceEnricher {
	return NewSourceEnricher(adapters, match.NewScorer(match.DefaultThresholds()), fusion.NewEngine(3), 0.7)
}

func atomicExpected() match.Expected {
	return match.Expected{Title: "Atomic Habits", Author: "James Clear"}
}

// A complete answer from the primary source short-circuits to a single
// validation call instead of fanning out to every source.
func TestEnrichPrimaryCompleteShortCircuits(t *testing.T) {
	primary := &fakeAdapter{name: sources.SourceHardcover, candidates: []sources.Candidate{candidateFor(sources.SourceHardcover, true)}}
	validator := &fakeAdapter{name: sources.SourceGoogleBooks, candidates: []sources.Candidate{candidateFor(sources.SourceGoogleBooks, false)}}
	catalog := &fakeAdapter{name: sources.SourceOpenLibrary}
	union := &fakeAdapter{name: sources.SourceWorldCat}

	e := newTestEnricher(primary, validator, catalog, union)
	outcome := e.Enrich(context.Background(), atomicExpected())

	assert.True(t, outcome.Matched)
	assert.Equal(t, 2, outcome.Sources)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), validator.calls.Load())
	assert.Equal(t, int32(0), catalog.calls.Load(), "catalog must not be queried when the primary is complete")
	assert.Equal(t, int32(0), union.calls.Load())
}

func TestEnrichIncompletePrimaryFansOut(t *testing.T) {
	primary := &fakeAdapter{name: sources.SourceHardcover, candidates: []sources.Candidate{candidateFor(sources.SourceHardcover, false)}}
	validator := &fakeAdapter{name: sources.SourceGoogleBooks, candidates: []sources.Candidate{candidateFor(sources.SourceGoogleBooks, true)}}
	catalog := &fakeAdapter{name: sources.SourceOpenLibrary, candidates: []sources.Candidate{candidateFor(sources.SourceOpenLibrary, true)}}

	e := newTestEnricher(primary, validator, catalog)
	outcome := e.Enrich(context.Background(), atomicExpected())

	assert.True(t, outcome.Matched)
	assert.Equal(t, 3, outcome.Sources)
	assert.Equal(t, int32(1), catalog.calls.Load())
	assert.NotEmpty(t, outcome.Result.CoverURL)
	assert.NotEmpty(t, outcome.Result.Description)
}

// One failing source degrades the result instead of failing the record.
func TestEnrichSourceFailureIsNotFatal(t *testing.T) {
	primary := &fakeAdapter{name: sources.SourceHardcover, err: errors.New("upstream down")}
	validator := &fakeAdapter{name: sources.SourceGoogleBooks, candidates: []sources.Candidate{candidateFor(sources.SourceGoogleBooks, true)}}

	e := newTestEnricher(primary, validator)
	outcome := e.Enrich(context.Background(), atomicExpected())

	assert.True(t, outcome.Matched)
	assert.Equal(t, 1, outcome.Sources)
}

// Primary-only enrichment never consults the other sources, even when the
// primary's answer is incomplete.
func TestEnrichPrimaryOnly(t *testing.T) {
	primary := &fakeAdapter{name: sources.SourceHardcover, candidates: []sources.Candidate{candidateFor(sources.SourceHardcover, false)}}
	validator := &fakeAdapter{name: sources.SourceGoogleBooks, candidates: []sources.Candidate{candidateFor(sources.SourceGoogleBooks, true)}}
	catalog := &fakeAdapter{name: sources.SourceOpenLibrary, candidates: []sources.Candidate{candidateFor(sources.SourceOpenLibrary, true)}}

	e := newTestEnricher(primary, validator, catalog)
	outcome := e.EnrichPrimaryOnly(context.Background(), atomicExpected())

	assert.True(t, outcome.Matched)
	assert.Equal(t, 1, outcome.Sources)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Zero(t, validator.calls.Load())
	assert.Zero(t, catalog.calls.Load())
}

func TestEnrichPrimaryOnlyNothingMatches(t *testing.T) {
	primary := &fakeAdapter{name: sources.SourceHardcover}
	e := newTestEnricher(primary)

	outcome := e.EnrichPrimaryOnly(context.Background(), atomicExpected())
	assert.False(t, outcome.Matched)
	assert.Equal(t, 0, outcome.Sources)
}

func TestEnrichNothingMatches(t *testing.T) {
	primary := &fakeAdapter{name: sources.SourceHardcover}
	e := newTestEnricher(primary)

	outcome := e.Enrich(context.Background(), atomicExpected())
	assert.False(t, outcome.Matched)
	assert.Equal(t, 0, outcome.Sources)
}
