package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClientConfig() ClientConfig {
	return ClientConfig{
		MaxRetries:  3,
		BackoffBase: time.Millisecond,
		CallTimeout: time.Second,
	}
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := doJSON(context.Background(), srv.Client(), testClientConfig(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, &out)
	if err != nil {
		t.Fatalf("doJSON failed: %v", err)
	}
	if !out.OK {
		t.Error("expected decoded body")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDoJSONClientErrorIsFinal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := doJSON(context.Background(), srv.Client(), testClientConfig(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, &out)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d calls", calls.Load())
	}
}

func TestDoJSONExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var out map[string]any
	err := doJSON(context.Background(), srv.Client(), testClientConfig(), func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	}, &out)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls.Load() != 4 {
		t.Errorf("expected initial attempt + 3 retries, got %d calls", calls.Load())
	}
}

// A formulation that 404s must not stop the plan; the next one runs.
func TestOpenLibraryFallsThroughFormulations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("title") != "" {
			w.Write([]byte(`{"numFound":1,"docs":[{"title":"Dune","author_name":["Frank Herbert"],"isbn":["9780441013593"],"cover_i":11481354,"first_publish_year":1965,"publisher":["Ace"],"number_of_pages_median":412}]}`))
			return
		}
		// ISBN formulation: not found.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOpenLibraryClient(testClientConfig())
	client.SetBaseURL(srv.URL)

	candidates, err := client.Fetch(context.Background(), "9780441013593", "Dune", "Frank Herbert")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Title != "Dune" || c.Author != "Frank Herbert" {
		t.Errorf("unexpected candidate: %+v", c)
	}
	if c.SourceName != SourceOpenLibrary {
		t.Errorf("source name = %q", c.SourceName)
	}
	if c.PageCount != 412 || c.PublishedDate != "1965" {
		t.Errorf("unexpected metadata: %+v", c)
	}
	if c.CoverURL != "https://covers.openlibrary.org/b/id/11481354-L.jpg" {
		t.Errorf("cover url = %q", c.CoverURL)
	}
}

func TestGoogleBooksISBNQuery(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		w.Write([]byte(`{"totalItems":1,"items":[{"id":"x","volumeInfo":{"title":"Effective Java","authors":["Joshua Bloch"],"publisher":"Addison-Wesley","publishedDate":"2018","pageCount":412,"industryIdentifiers":[{"type":"ISBN_10","identifier":"0134685997"},{"type":"ISBN_13","identifier":"9780134685991"}],"imageLinks":{"thumbnail":"http://books.google.com/thumb.jpg"}}}]}`))
	}))
	defer srv.Close()

	client := NewGoogleBooksClient(testClientConfig())
	client.SetBaseURL(srv.URL)

	candidates, err := client.Fetch(context.Background(), "9780134685991", "Effective Java", "Joshua Bloch")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	// Both identifier variants must have been queried.
	if len(queries) != 2 || queries[0] != "isbn:9780134685991" || queries[1] != "isbn:0134685997" {
		t.Errorf("unexpected queries: %v", queries)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected one candidate per variant query, got %d", len(candidates))
	}
	if candidates[0].ISBN != "9780134685991" {
		t.Errorf("primary ISBN should prefer the 13-digit form, got %q", candidates[0].ISBN)
	}
}
