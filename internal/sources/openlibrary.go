package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const defaultOpenLibraryBaseURL = "https://openlibrary.org"

// OpenLibraryClient fetches candidates from the Open Library search API.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	cfg        ClientConfig
}

func NewOpenLibraryClient(cfg ClientConfig) *OpenLibraryClient {
	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		baseURL:    defaultOpenLibraryBaseURL,
		cfg:        cfg,
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (c *OpenLibraryClient) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *OpenLibraryClient) Name() string {
	return SourceOpenLibrary
}

func (c *OpenLibraryClient) Fetch(ctx context.Context, rawISBN, title, author string) ([]Candidate, error) {
	return fetchPlan(ctx, rawISBN, title, author, c.search)
}

func (c *OpenLibraryClient) search(ctx context.Context, f Formulation) ([]Candidate, error) {
	params := url.Values{}
	params.Set("limit", "10")

	switch f.Kind {
	case QueryISBN:
		terms := make([]string, len(f.ISBNs))
		for i, v := range f.ISBNs {
			terms[i] = "isbn:" + v
		}
		params.Set("q", strings.Join(terms, " OR "))
	case QueryTitleAuthor:
		if f.Exact {
			params.Set("title", f.Title)
			params.Set("author", f.Author)
		} else {
			params.Set("q", f.Title+" "+f.Author)
		}
	case QueryTitleOnly:
		params.Set("q", f.Title)
	}

	searchURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	var result openLibrarySearchResult
	err := doJSON(ctx, c.httpClient, c.cfg, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("openlibrary search: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.Docs))
	for i := range result.Docs {
		candidates = append(candidates, c.toCandidate(&result.Docs[i]))
	}
	return candidates, nil
}

func (c *OpenLibraryClient) toCandidate(doc *openLibrarySearchDoc) Candidate {
	cand := Candidate{
		Title:      doc.Title,
		SourceName: SourceOpenLibrary,
		ISBNs:      doc.ISBN,
		PageCount:  doc.NumberOfPagesMedian,
	}

	if len(doc.AuthorName) > 0 {
		cand.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		cand.ISBN = doc.ISBN[0]
	}
	if len(doc.Publisher) > 0 {
		cand.Publisher = doc.Publisher[0]
	}
	if doc.FirstPublishYear > 0 {
		cand.PublishedDate = strconv.Itoa(doc.FirstPublishYear)
	}

	if doc.CoverI != 0 {
		cand.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	} else if cand.ISBN != "" {
		cand.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", cand.ISBN)
	}

	// The search API exposes subjects but no description.
	subjects := doc.Subject
	if len(subjects) > 5 {
		subjects = subjects[:5]
	}
	cand.GenreRaw = strings.Join(subjects, ", ")

	return cand
}

// Open Library API response types (internal)

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    int      `json:"first_publish_year"`
	Publisher           []string `json:"publisher"`
	ISBN                []string `json:"isbn"`
	CoverI              int      `json:"cover_i"`
	Subject             []string `json:"subject"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}

var _ Adapter = (*OpenLibraryClient)(nil)
