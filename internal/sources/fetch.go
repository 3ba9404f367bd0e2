package sources

import (
	"context"
	"errors"
)

// fetchPlan walks the ordered query plan, stopping at the first formulation
// that produces candidates. A 4xx on one formulation just moves on to the
// next; a transport failure or exhausted retries aborts the whole fetch so
// the caller can write the source off for this record.
func fetchPlan(ctx context.Context, rawISBN, title, author string, search func(ctx context.Context, f Formulation) ([]Candidate, error)) ([]Candidate, error) {
	for _, f := range Formulations(rawISBN, title, author) {
		candidates, err := search(ctx, f)
		if err != nil {
			var ce *ClientError
			if errors.As(err, &ce) {
				continue
			}
			return nil, err
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
	}
	return nil, nil
}
