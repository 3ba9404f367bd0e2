// Package importer runs the import pipeline: parsed records in, persisted
// and enriched books out, with progress events along the way.
package importer

import (
	"context"
	"log"
	"sync"

	"librarium/internal/fusion"
	"librarium/internal/match"
	"librarium/internal/sources"
)

// EnrichOutcome is what enrichment produced for one record. Matched is false
// when no source returned an acceptable candidate; the record is still
// imported, flagged for verification.
type EnrichOutcome struct {
	Result     fusion.EnrichedResult
	Confidence float64
	Sources    int
	Matched    bool
}

// Enricher resolves one record against the metadata sources. Enrich consults
// every configured source; EnrichPrimaryOnly takes the primary source's best
// candidate alone, skipping cross-validation.
type Enricher interface {
	Enrich(ctx context.Context, expected match.Expected) EnrichOutcome
	EnrichPrimaryOnly(ctx context.Context, expected match.Expected) EnrichOutcome
}

// SourceEnricher queries the configured adapters, keeps each source's best
// match, and fuses the winners. The primary source is asked first; when it
// already delivers a complete record only the validator is consulted,
// otherwise every remaining source is queried concurrently.
type SourceEnricher struct {
	primary   sources.Adapter
	validator sources.Adapter
	secondary []sources.Adapter

	scorer *match.Scorer
	engine *fusion.Engine

	// Confidence is informational; below this it gets logged, never blocked.
	confidenceThreshold float64
}

var _ Enricher = (*SourceEnricher)(nil)

// NewSourceEnricher orders the adapters by source priority. The highest
// priority adapter becomes primary and the book search adapter, when
// present, the validator.
func NewSourceEnricher(adapters []sources.Adapter, scorer *match.Scorer, engine *fusion.Engine, confidenceThreshold float64) *SourceEnricher {
	e := &SourceEnricher{
		scorer:              scorer,
		engine:              engine,
		confidenceThreshold: confidenceThreshold,
	}

	for _, a := range adapters {
		switch {
		case e.primary == nil || sources.Priority(a.Name()) < sources.Priority(e.primary.Name()):
			if e.primary != nil {
				e.secondary = append(e.secondary, e.primary)
			}
			e.primary = a
		default:
			e.secondary = append(e.secondary, a)
		}
		if a.Name() == sources.SourceGoogleBooks {
			e.validator = a
		}
	}
	return e
}

func (e *SourceEnricher) Enrich(ctx context.Context, expected match.Expected) EnrichOutcome {
	winners := make(map[string]match.ScoredCandidate)

	if e.primary != nil {
		if winner, ok := e.fetchBest(ctx, e.primary, expected); ok {
			winners[e.primary.Name()] = winner
		}
	}

	rest := e.secondary
	if primaryComplete(winners, e.primary) && e.validator != nil {
		// The primary already has a cover and a usable description; one
		// cheap cross-check is enough.
		rest = []sources.Adapter{e.validator}
	}

	e.fetchConcurrent(ctx, rest, expected, winners)

	if len(winners) == 0 {
		return EnrichOutcome{}
	}

	outcome := EnrichOutcome{
		Result:     e.engine.Fuse(winners),
		Confidence: e.engine.Confidence(winners, e.confidenceThreshold),
		Sources:    len(winners),
		Matched:    true,
	}
	if outcome.Confidence < 0.5 {
		log.Printf("[enricher] low confidence %.2f for %q by %q (%d sources)",
			outcome.Confidence, expected.Title, expected.Author, outcome.Sources)
	}
	return outcome
}

// EnrichPrimaryOnly asks only the primary source and takes its best candidate
// as-is. Confidence is whatever a single source yields; there is nothing to
// cross-check against.
func (e *SourceEnricher) EnrichPrimaryOnly(ctx context.Context, expected match.Expected) EnrichOutcome {
	if e.primary == nil {
		return EnrichOutcome{}
	}
	winner, ok := e.fetchBest(ctx, e.primary, expected)
	if !ok {
		return EnrichOutcome{}
	}

	winners := map[string]match.ScoredCandidate{e.primary.Name(): winner}
	return EnrichOutcome{
		Result:     e.engine.Fuse(winners),
		Confidence: e.engine.Confidence(winners, e.confidenceThreshold),
		Sources:    1,
		Matched:    true,
	}
}

// fetchConcurrent queries the given adapters in parallel and merges their
// winners into the map. Adapter failures are logged and treated as empty.
func (e *SourceEnricher) fetchConcurrent(ctx context.Context, adapters []sources.Adapter, expected match.Expected, winners map[string]match.ScoredCandidate) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, adapter := range adapters {
		if adapter == e.primary {
			continue
		}
		if _, done := winners[adapter.Name()]; done {
			continue
		}
		wg.Add(1)
		go func(a sources.Adapter) {
			defer wg.Done()
			if winner, ok := e.fetchBest(ctx, a, expected); ok {
				mu.Lock()
				winners[a.Name()] = winner
				mu.Unlock()
			}
		}(adapter)
	}
	wg.Wait()
}

func (e *SourceEnricher) fetchBest(ctx context.Context, a sources.Adapter, expected match.Expected) (match.ScoredCandidate, bool) {
	candidates, err := a.Fetch(ctx, expected.ISBN, expected.Title, expected.Author)
	if err != nil {
		log.Printf("[enricher] %s failed for %q: %v", a.Name(), expected.Title, err)
		return match.ScoredCandidate{}, false
	}
	return e.scorer.Best(candidates, expected)
}

// primaryComplete reports whether the primary source alone already yields a
// presentable record.
func primaryComplete(winners map[string]match.ScoredCandidate, primary sources.Adapter) bool {
	if primary == nil {
		return false
	}
	w, ok := winners[primary.Name()]
	return ok && w.CoverURL != "" && len(w.Description) >= fusion.MinDescriptionLength
}
