package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooksClient fetches candidates from the Google Books volumes API.
type GoogleBooksClient struct {
	httpClient *http.Client
	baseURL    string
	cfg        ClientConfig
}

func NewGoogleBooksClient(cfg ClientConfig) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		baseURL:    defaultGoogleBooksBaseURL,
		cfg:        cfg,
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (c *GoogleBooksClient) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *GoogleBooksClient) Name() string {
	return SourceGoogleBooks
}

func (c *GoogleBooksClient) Fetch(ctx context.Context, rawISBN, title, author string) ([]Candidate, error) {
	return fetchPlan(ctx, rawISBN, title, author, c.search)
}

func (c *GoogleBooksClient) search(ctx context.Context, f Formulation) ([]Candidate, error) {
	var q string
	switch f.Kind {
	case QueryISBN:
		// The volumes API only takes one isbn: term per query, so variants
		// are fetched separately and concatenated.
		var all []Candidate
		for _, v := range f.ISBNs {
			candidates, err := c.query(ctx, "isbn:"+v)
			if err != nil {
				return nil, err
			}
			all = append(all, candidates...)
		}
		return all, nil
	case QueryTitleAuthor:
		if f.Exact {
			q = fmt.Sprintf("intitle:%q inauthor:%q", f.Title, f.Author)
		} else {
			q = f.Title + " " + f.Author
		}
	case QueryTitleOnly:
		q = f.Title
	}
	return c.query(ctx, q)
}

func (c *GoogleBooksClient) query(ctx context.Context, q string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("maxResults", "10")
	params.Set("printType", "books")

	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	var result googleBooksResult
	err := doJSON(ctx, c.httpClient, c.cfg, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("googlebooks search: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.Items))
	for i := range result.Items {
		candidates = append(candidates, c.toCandidate(&result.Items[i].VolumeInfo))
	}
	return candidates, nil
}

func (c *GoogleBooksClient) toCandidate(info *googleVolumeInfo) Candidate {
	cand := Candidate{
		Title:         info.Title,
		Description:   info.Description,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		PageCount:     info.PageCount,
		GenreRaw:      strings.Join(info.Categories, ", "),
		SourceName:    SourceGoogleBooks,
	}

	if info.Subtitle != "" {
		cand.Title = info.Title + ": " + info.Subtitle
	}
	if len(info.Authors) > 0 {
		cand.Author = info.Authors[0]
	}

	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13", "ISBN_10":
			cand.ISBNs = append(cand.ISBNs, id.Identifier)
			// Prefer the 13-digit form as the primary identifier.
			if cand.ISBN == "" || id.Type == "ISBN_13" {
				cand.ISBN = id.Identifier
			}
		}
	}

	// Biggest available image wins; thumbnails are a last resort.
	links := info.ImageLinks
	for _, u := range []string{links.ExtraLarge, links.Large, links.Medium, links.Small, links.Thumbnail, links.SmallThumbnail} {
		if u != "" {
			cand.CoverURL = u
			break
		}
	}

	return cand
}

// Google Books API response types (internal)

type googleBooksResult struct {
	TotalItems int          `json:"totalItems"`
	Items      []googleItem `json:"items"`
}

type googleItem struct {
	ID         string           `json:"id"`
	VolumeInfo googleVolumeInfo `json:"volumeInfo"`
}

type googleVolumeInfo struct {
	Title               string                     `json:"title"`
	Subtitle            string                     `json:"subtitle"`
	Authors             []string                   `json:"authors"`
	Publisher           string                     `json:"publisher"`
	PublishedDate       string                     `json:"publishedDate"`
	Description         string                     `json:"description"`
	PageCount           int                        `json:"pageCount"`
	Categories          []string                   `json:"categories"`
	Language            string                     `json:"language"`
	IndustryIdentifiers []googleIndustryIdentifier `json:"industryIdentifiers"`
	ImageLinks          googleImageLinks           `json:"imageLinks"`
}

type googleIndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type googleImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

var _ Adapter = (*GoogleBooksClient)(nil)
