package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/html"

	"dropwatch/internal/config"
)

// Fetcher retrieves calendar pages with the configured user agent and parses
// them into document trees.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// NewFetcher creates a fetcher from the sources config section.
func NewFetcher(cfg config.Sources, opts ...FetcherOption) *Fetcher {
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	f := &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  cfg.UserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Page fetches a URL and parses the response body as HTML.
func (f *Fetcher) Page(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	requestStart := time.Now()
	resp, err := f.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("fetch %s (latency=%v): %w", pageURL, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned %d (latency=%v)", pageURL, resp.StatusCode, latency)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}
