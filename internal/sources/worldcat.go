package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultWorldCatBaseURL = "https://search.worldcat.org/api"

// WorldCatClient fetches candidates from the WorldCat union catalog's brief
// search endpoint.
type WorldCatClient struct {
	httpClient *http.Client
	baseURL    string
	cfg        ClientConfig
}

func NewWorldCatClient(cfg ClientConfig) *WorldCatClient {
	return &WorldCatClient{
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		baseURL:    defaultWorldCatBaseURL,
		cfg:        cfg,
	}
}

// SetBaseURL overrides the API endpoint, used in tests.
func (c *WorldCatClient) SetBaseURL(u string) {
	c.baseURL = u
}

func (c *WorldCatClient) Name() string {
	return SourceWorldCat
}

func (c *WorldCatClient) Fetch(ctx context.Context, rawISBN, title, author string) ([]Candidate, error) {
	return fetchPlan(ctx, rawISBN, title, author, c.search)
}

func (c *WorldCatClient) search(ctx context.Context, f Formulation) ([]Candidate, error) {
	params := url.Values{}
	params.Set("limit", "10")

	switch f.Kind {
	case QueryISBN:
		params.Set("q", "bn:"+strings.Join(f.ISBNs, " OR bn:"))
	case QueryTitleAuthor:
		if f.Exact {
			params.Set("q", fmt.Sprintf("ti:%q AND au:%q", f.Title, f.Author))
		} else {
			params.Set("q", f.Title+" "+f.Author)
		}
	case QueryTitleOnly:
		params.Set("q", "ti:"+f.Title)
	}

	searchURL := fmt.Sprintf("%s/search-item?%s", c.baseURL, params.Encode())

	var result worldCatResult
	err := doJSON(ctx, c.httpClient, c.cfg, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("worldcat search: %w", err)
	}

	candidates := make([]Candidate, 0, len(result.BriefRecords))
	for i := range result.BriefRecords {
		candidates = append(candidates, c.toCandidate(&result.BriefRecords[i]))
	}
	return candidates, nil
}

func (c *WorldCatClient) toCandidate(rec *worldCatBriefRecord) Candidate {
	cand := Candidate{
		Title:         rec.Title,
		Author:        rec.Creator,
		ISBNs:         rec.ISBNs,
		Description:   rec.Summary,
		Publisher:     rec.Publisher,
		PublishedDate: rec.PublicationDate,
		CoverURL:      rec.CoverImage,
		GenreRaw:      strings.Join(rec.Subjects, ", "),
		SourceName:    SourceWorldCat,
	}

	if len(rec.ISBNs) > 0 {
		cand.ISBN = rec.ISBNs[0]
	}

	return cand
}

// WorldCat API response types (internal)

type worldCatResult struct {
	NumberOfRecords int                   `json:"numberOfRecords"`
	BriefRecords    []worldCatBriefRecord `json:"briefRecords"`
}

type worldCatBriefRecord struct {
	OCLCNumber      string   `json:"oclcNumber"`
	Title           string   `json:"title"`
	Creator         string   `json:"creator"`
	ISBNs           []string `json:"isbns"`
	Publisher       string   `json:"publisher"`
	PublicationDate string   `json:"publicationDate"`
	Summary         string   `json:"summary"`
	CoverImage      string   `json:"coverImage"`
	Subjects        []string `json:"subjects"`
}

var _ Adapter = (*WorldCatClient)(nil)
