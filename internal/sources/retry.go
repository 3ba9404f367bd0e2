package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const userAgent = "Librarium/1.0 (book metadata enrichment)"

// ClientError represents a 4xx response. Client errors are final: the
// request will never succeed on retry.
type ClientError struct {
	StatusCode int
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: HTTP %d", e.StatusCode)
}

// ServerError represents a 5xx response, which is worth retrying.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: HTTP %d", e.StatusCode)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func errNotRetryable(err error) error { return &permanentError{err: err} }

func isRetryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return false
	}
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	// Server errors and transport failures are retried.
	return true
}

// doJSON issues a request built by build, retrying transient failures with
// exponential backoff, and decodes the body into out. Each attempt gets its
// own timeout. Exhausting retries returns the last error.
func doJSON(ctx context.Context, client *http.Client, cfg ClientConfig, build func(ctx context.Context) (*http.Request, error), out any) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(cfg.BackoffBase) * math.Pow(1.5, float64(attempt-1)))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = doOnce(ctx, client, cfg.CallTimeout, build, out)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func doOnce(ctx context.Context, client *http.Client, timeout time.Duration, build func(ctx context.Context) (*http.Request, error), out any) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := build(callCtx)
	if err != nil {
		return fmt.Errorf("create request: %w", errNotRetryable(err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &ClientError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
