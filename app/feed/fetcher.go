package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchTimeout bounds a single feed request. Only the network fetch carries a
// timeout; storage operations run on the caller's context.
const fetchTimeout = 10 * time.Second

// FetchStatus classifies the outcome of a conditional GET.
type FetchStatus int

const (
	// StatusFetched means a 200 response with fresh body bytes.
	StatusFetched FetchStatus = iota
	// StatusNotModified means a 304 response; nothing changed upstream.
	StatusNotModified
)

// FetchResult carries the classified response of one fetch cycle.
type FetchResult struct {
	Status       FetchStatus
	Body         []byte
	LastModified string // Revalidation token from the response, empty when absent
}

// Fetcher issues conditional HTTP GETs for feed URLs. A stored revalidation
// token is replayed as If-Modified-Since so unchanged feeds terminate with a
// cheap 304 instead of a full download.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		userAgent:  userAgent,
	}
}

// Fetch performs a single GET. Any status other than 200 and 304, and any
// transport failure, is returned as an error; the caller logs and abandons
// the cycle. No retry happens here: the next scheduled pass is the only
// retry mechanism.
func (f *Fetcher) Fetch(ctx context.Context, feedURL, lastModified string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		// Header lookup is canonicalized, so the match is case-insensitive.
		return &FetchResult{
			Status:       StatusFetched,
			Body:         body,
			LastModified: resp.Header.Get("Last-Modified"),
		}, nil

	case http.StatusNotModified:
		return &FetchResult{Status: StatusNotModified}, nil

	default:
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}
}
