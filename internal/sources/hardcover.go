package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultHardcoverBaseURL = "https://api.hardcover.app/v1/graphql"

const hardcoverSearchQuery = `query Search($query: String!) {
  search(query: $query, query_type: "Book", per_page: 10) {
    results
  }
}`

// HardcoverClient fetches candidates from the Hardcover community graph.
// The API works unauthenticated at reduced rate limits; a bearer token is
// optional.
type HardcoverClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cfg        ClientConfig
}

func NewHardcoverClient(token string, cfg ClientConfig) *HardcoverClient {
	return &HardcoverClient{
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		baseURL:    defaultHardcoverBaseURL,
		token:      token,
		cfg:        cfg,
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (c *HardcoverClient) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *HardcoverClient) Name() string {
	return SourceHardcover
}

func (c *HardcoverClient) Fetch(ctx context.Context, rawISBN, title, author string) ([]Candidate, error) {
	return fetchPlan(ctx, rawISBN, title, author, c.search)
}

func (c *HardcoverClient) search(ctx context.Context, f Formulation) ([]Candidate, error) {
	var q string
	switch f.Kind {
	case QueryISBN:
		// The search index covers editions unevenly, so every identifier
		// variant gets a try before giving up on the ISBN query.
		var candidates []Candidate
		var err error
		for _, isbn := range f.ISBNs {
			candidates, err = c.searchQuery(ctx, isbn)
			if err != nil {
				return nil, err
			}
			if len(candidates) > 0 {
				return candidates, nil
			}
		}
		return candidates, nil
	case QueryTitleAuthor:
		q = f.Title + " " + f.Author
	case QueryTitleOnly:
		q = f.Title
	}
	return c.searchQuery(ctx, q)
}

func (c *HardcoverClient) searchQuery(ctx context.Context, q string) ([]Candidate, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     hardcoverSearchQuery,
		"variables": map[string]string{"query": q},
	})
	if err != nil {
		return nil, fmt.Errorf("hardcover marshal query: %w", err)
	}

	var result hardcoverResponse
	err = doJSON(ctx, c.httpClient, c.cfg, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		return req, nil
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("hardcover search: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("hardcover graphql: %s", result.Errors[0].Message)
	}

	candidates := make([]Candidate, 0, len(result.Data.Search.Results.Hits))
	for i := range result.Data.Search.Results.Hits {
		candidates = append(candidates, c.toCandidate(&result.Data.Search.Results.Hits[i].Document))
	}
	return candidates, nil
}

func (c *HardcoverClient) toCandidate(doc *hardcoverDocument) Candidate {
	cand := Candidate{
		Title:         doc.Title,
		Description:   doc.Description,
		ISBNs:         doc.ISBNs,
		PageCount:     doc.Pages,
		PublishedDate: doc.ReleaseDate,
		GenreRaw:      strings.Join(doc.Genres, ", "),
		CoverURL:      doc.Image.URL,
		SourceName:    SourceHardcover,
	}

	if len(doc.AuthorNames) > 0 {
		cand.Author = doc.AuthorNames[0]
	}
	if len(doc.ISBNs) > 0 {
		cand.ISBN = doc.ISBNs[0]
	}
	if doc.ReleaseYear > 0 && cand.PublishedDate == "" {
		cand.PublishedDate = fmt.Sprintf("%d", doc.ReleaseYear)
	}

	return cand
}

// Hardcover API response types (internal)

type hardcoverResponse struct {
	Data struct {
		Search struct {
			Results hardcoverResults `json:"results"`
		} `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type hardcoverResults struct {
	Hits []hardcoverHit `json:"hits"`
}

type hardcoverHit struct {
	Document hardcoverDocument `json:"document"`
}

type hardcoverDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	AuthorNames []string `json:"author_names"`
	ISBNs       []string `json:"isbns"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Pages       int      `json:"pages"`
	ReleaseDate string   `json:"release_date"`
	ReleaseYear int      `json:"release_year"`
	Image       struct {
		URL string `json:"url"`
	} `json:"image"`
}

var _ Adapter = (*HardcoverClient)(nil)
